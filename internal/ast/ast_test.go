package ast

import (
	"testing"

	"github.com/vmcc-project/vmcc/internal/sym"
)

func TestAppendBuildsOrderedChildList(t *testing.T) {
	root := New(Block, nil)
	a := New(Num, nil)
	b := New(Num, nil)
	c := New(Num, nil)
	root.Append(a).Append(b).Append(c)

	got := root.Children()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("Children() = %v, want [a b c]", got)
	}
	if root.LastChild != c {
		t.Fatalf("LastChild = %v, want c", root.LastChild)
	}
}

func TestDetachMiddleChild(t *testing.T) {
	root := New(Block, nil)
	a, b, c := New(Num, nil), New(Num, nil), New(Num, nil)
	root.Append(a).Append(b).Append(c)

	root.Detach(b)
	got := root.Children()
	if len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("after detach, Children() = %v, want [a c]", got)
	}
}

func TestDetachLastChildUpdatesLastChild(t *testing.T) {
	root := New(Block, nil)
	a, b := New(Num, nil), New(Num, nil)
	root.Append(a).Append(b)
	root.Detach(b)
	if root.LastChild != a {
		t.Fatalf("LastChild after detaching tail = %v, want a", root.LastChild)
	}
}

func TestCastNoOpWhenTypesMatch(t *testing.T) {
	n := New(Num, nil)
	n.Type = sym.TyInt
	got := MakeCast(n, sym.TyInt)
	if got != n {
		t.Fatalf("Cast to the same type should return the node unchanged")
	}
}

func TestCastWrapsWhenTypesDiffer(t *testing.T) {
	n := New(Num, nil)
	n.Type = sym.TyChar
	got := MakeCast(n, sym.TyInt)
	if got.Kind != Cast {
		t.Fatalf("expected a Cast node, got kind %v", got.Kind)
	}
	if got.FirstChild != n {
		t.Fatalf("expected the cast to wrap the original node")
	}
}

func TestPromoteIntWidensCharNotInt(t *testing.T) {
	c := New(Num, nil)
	c.Type = sym.TyChar
	widened := PromoteInt(c)
	if !sym.Equal(widened.Type, sym.TyInt) {
		t.Fatalf("expected char to promote to int")
	}

	i := New(Num, nil)
	i.Type = sym.TyInt
	same := PromoteInt(i)
	if same != i {
		t.Fatalf("expected int to be returned unchanged")
	}
}

func TestDecayWrapsArrayInPointerCast(t *testing.T) {
	v := New(Var, nil)
	v.Type = sym.NewArray(sym.TyInt, 4)
	decayed := Decay(v)
	if decayed.Kind != Cast || !decayed.Type.IsPointer() {
		t.Fatalf("expected array to decay to a pointer cast")
	}
}

func TestMakePredicateCastsToBool(t *testing.T) {
	n := New(Num, nil)
	n.Type = sym.TyInt
	pred := MakePredicate(n)
	if !sym.Equal(pred.Type, sym.TyBool) {
		t.Fatalf("expected predicate cast to bool")
	}
}
