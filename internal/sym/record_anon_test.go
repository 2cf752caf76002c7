package sym

import (
	"testing"

	"github.com/vmcc-project/vmcc/internal/intern"
)

func TestRecordAnonymousMemberFlattens(t *testing.T) {
	pool := intern.NewPool()

	inner := NewRecord(nil, true)
	inner.Add(pool.Intern("a"), TyInt, nil)
	inner.Add(pool.Intern("b"), TyChar, nil)
	inner.IsDefined = true

	outer := NewRecord(nil, true)
	outer.Add(pool.Intern("x"), TyChar, nil)
	outer.Add(nil, RecordType(inner), nil) // anonymous struct member
	outer.IsDefined = true

	ty, offset, ok := outer.Find("a")
	if !ok {
		t.Fatalf("expected to find flattened member %q", "a")
	}
	if !Equal(ty, TyInt) {
		t.Fatalf("a's type = %v, want int", ty)
	}
	// "a" sits right after the anonymous member's own start offset.
	_, innerOffset, _ := inner.Find("a")
	anonMember := outer.Members[1]
	if offset != anonMember.Offset+innerOffset {
		t.Fatalf("flattened offset = %d, want %d", offset, anonMember.Offset+innerOffset)
	}
}

