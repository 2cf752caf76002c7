package sym

import (
	"strings"
	"testing"

	"github.com/vmcc-project/vmcc/internal/diag"
)

func TestRecordStructOffsetsIncreaseAndAlign(t *testing.T) {
	r := NewRecord(nil, true)
	r.Add(nil, TyChar, nil) // offset 0, size 1
	r.Add(nil, TyInt, nil)  // needs 4-align -> offset 4
	r.Add(nil, TyChar, nil) // offset 8

	if got, want := r.Members[0].Offset, int64(0); got != want {
		t.Fatalf("member0 offset = %d, want %d", got, want)
	}
	if got, want := r.Members[1].Offset, int64(4); got != want {
		t.Fatalf("member1 offset = %d, want %d", got, want)
	}
	if got, want := r.Members[2].Offset, int64(8); got != want {
		t.Fatalf("member2 offset = %d, want %d", got, want)
	}
	if r.Alignment != 4 {
		t.Fatalf("Alignment = %d, want 4", r.Alignment)
	}
	// size must round up to alignment and be >= sum of member sizes.
	if r.Size%r.Alignment != 0 {
		t.Fatalf("Size %d is not a multiple of Alignment %d", r.Size, r.Alignment)
	}
	if r.Size < 9 {
		t.Fatalf("Size = %d, want >= 9", r.Size)
	}
}

func TestRecordUnionAllOffsetsZero(t *testing.T) {
	u := NewRecord(nil, false)
	u.Add(nil, TyChar, nil)
	u.Add(nil, TyInt, nil)
	u.Add(nil, TyLong, nil)
	for i, m := range u.Members {
		if m.Offset != 0 {
			t.Fatalf("union member %d offset = %d, want 0", i, m.Offset)
		}
	}
	if u.Size != 8 {
		t.Fatalf("union Size = %d, want 8", u.Size)
	}
}

func TestRecordFlexibleArrayContributesZeroSize(t *testing.T) {
	r := NewRecord(nil, true)
	r.Add(nil, TyInt, nil)
	flex := NewIndeterminate(TyInt)
	r.Add(nil, flex, nil)
	if r.Size != 4 {
		t.Fatalf("Size = %d, want 4 (flexible array contributes 0)", r.Size)
	}
}

func TestRecordRejectsFlexibleArrayInUnion(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*diag.Error)
		if !ok {
			t.Fatalf("expected recover() to yield *diag.Error, got %T", r)
		}
		if !strings.Contains(err.Error(), "flexible array") {
			t.Fatalf("error = %q, want it to mention flexible array members", err.Error())
		}
	}()
	u := NewRecord(nil, false)
	flex := NewIndeterminate(TyInt)
	u.Add(nil, flex, nil)
}

func TestRecordFindFailsBeforeDefined(t *testing.T) {
	r := NewRecord(nil, true)
	r.Add(nil, TyInt, nil)
	if _, _, ok := r.Find("x"); ok {
		t.Fatalf("Find should fail on an incomplete record")
	}
	r.IsDefined = true
}
