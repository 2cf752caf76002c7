package sym

import (
	"testing"

	"github.com/vmcc-project/vmcc/internal/intern"
)

func TestScopeShadowingAcrossScopesAllowed(t *testing.T) {
	pool := intern.NewPool()
	global := NewScope(nil)
	x := NewVariable(pool.Intern("x"), TyInt, nil)
	if !global.AddSymbol("x", x) {
		t.Fatalf("expected first add of x to succeed")
	}

	inner := NewScope(global)
	shadow := NewVariable(pool.Intern("x"), TyChar, nil)
	if !inner.AddSymbol("x", shadow) {
		t.Fatalf("expected shadowing add in child scope to succeed")
	}

	if got := inner.FindSymbol("x", true); got != shadow {
		t.Fatalf("expected inner lookup to find the shadow")
	}
	if got := global.FindSymbol("x", true); got != x {
		t.Fatalf("expected global lookup to find the original")
	}
}

func TestScopeRejectsSameScopeDuplicate(t *testing.T) {
	pool := intern.NewPool()
	s := NewScope(nil)
	a := NewVariable(pool.Intern("x"), TyInt, nil)
	b := NewVariable(pool.Intern("x"), TyInt, nil)
	if !s.AddSymbol("x", a) {
		t.Fatalf("expected first add to succeed")
	}
	if s.AddSymbol("x", b) {
		t.Fatalf("expected duplicate add in same scope to fail")
	}
}

func TestScopeNonRecursiveLookupStopsAtCurrentScope(t *testing.T) {
	pool := intern.NewPool()
	global := NewScope(nil)
	global.AddSymbol("x", NewVariable(pool.Intern("x"), TyInt, nil))
	inner := NewScope(global)
	if got := inner.FindSymbol("x", false); got != nil {
		t.Fatalf("expected non-recursive lookup to miss, got %v", got)
	}
	if got := inner.FindSymbol("x", true); got == nil {
		t.Fatalf("expected recursive lookup to find x")
	}
}

func TestScopeStackDisciplineRoundTrips(t *testing.T) {
	global := NewScope(nil)
	cur := global
	for i := 0; i < 5; i++ {
		cur = NewScope(cur)
	}
	for cur.Parent != nil {
		cur = cur.Parent
	}
	if cur != global {
		t.Fatalf("expected N pushes + N pops to return to the original scope")
	}
}
