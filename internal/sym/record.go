package sym

import (
	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
)

// Member is one field of a Record: an optional name, its type, and its byte
// offset from the start of the record (spec 3 "Record").
type Member struct {
	Name   *intern.Symbol // nil for an anonymous struct/union member
	Type   *Type
	Offset int64

	// Bit-field width, parsed but not used for storage layout or codegen
	// (spec 4.5 "parsed as a constant expression; stored only for
	// validation"). IsBitfield distinguishes "declared with no width" from
	// "width zero" for unnamed padding members.
	IsBitfield bool
	BitWidth   int64
}

// Record is a struct or union: an ordered member list plus a name-indexed
// map for lookup, and the computed layout (spec 3 "Record", 4.3).
type Record struct {
	Tag      *intern.Symbol // optional
	IsStruct bool           // false => union
	Members  []*Member
	byName   map[string]*Member // name -> member, including flattened anonymous members
	Size     int64
	Alignment int64
	IsDefined bool
}

// NewRecord creates an empty, not-yet-defined struct or union.
func NewRecord(tag *intern.Symbol, isStruct bool) *Record {
	return &Record{Tag: tag, IsStruct: isStruct, byName: make(map[string]*Member)}
}

// Add appends a named or anonymous member, computing its offset and
// updating the record's size/alignment exactly as original_source's
// record_add does (spec 4.3):
//
//	offset = structs: prev member's end rounded up to this member's
//	         alignment; unions: always 0.
//	record.alignment = max(record.alignment, alignment(type))
//	record.size = max(record.size, (offset + size(type)) rounded up to
//	         record.alignment), except a flexible array contributes 0.
//
// Anonymous struct/union members have their own member map flattened into
// the parent's map with offsets added; named members must not collide with
// an existing name in this record.
func (r *Record) Add(name *intern.Symbol, t *Type, tok *lexer.Token) *Member {
	if len(r.Members) > 0 {
		last := r.Members[len(r.Members)-1]
		if last.Type.IsFlexibleArray() {
			panic("internal error: member added after a flexible array member")
		}
	}
	if !r.IsStruct && t.IsFlexibleArray() {
		diag.Fatal(diag.Semantic, recordPos(tok), "unions cannot contain flexible array members")
	}

	var offset int64
	if r.IsStruct && len(r.Members) > 0 {
		last := r.Members[len(r.Members)-1]
		offset = last.Offset + last.Type.Size()
	}

	align := t.Alignment()
	if r.Alignment < align {
		r.Alignment = align
	}
	offset = alignUp(offset, align)

	m := &Member{Name: name, Type: t, Offset: offset}
	r.Members = append(r.Members, m)

	if name != nil {
		r.addToMap(name.String(), m, offset)
	} else if t.Base == RecordBase {
		r.addAnonymousToMap(t.Rec, offset)
	}

	extent := int64(0)
	if !t.IsFlexibleArray() {
		extent = t.Size()
	}
	end := alignUp(offset+extent, r.Alignment)
	if end > r.Size {
		r.Size = end
	}
	return m
}

func (r *Record) addToMap(name string, m *Member, offset int64) {
	if _, dup := r.byName[name]; dup {
		panic("internal error: duplicate member name " + name + " must be rejected by the parser before calling Add")
	}
	r.byName[name] = &Member{Name: m.Name, Type: m.Type, Offset: offset, IsBitfield: m.IsBitfield, BitWidth: m.BitWidth}
}

func (r *Record) addAnonymousToMap(child *Record, baseOffset int64) {
	for name, cm := range child.byName {
		r.addToMap(name, cm, baseOffset+cm.Offset)
	}
}

// HasMember reports whether name collides with an existing member, for the
// parser to check before calling Add (spec 4.3 "Duplicate member names are
// rejected").
func (r *Record) HasMember(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Find looks up name, returning its type and total offset. It fails only
// if the record is not yet complete (spec 4.3 record_find).
func (r *Record) Find(name string) (*Type, int64, bool) {
	if !r.IsDefined {
		return nil, 0, false
	}
	m, ok := r.byName[name]
	if !ok {
		return nil, 0, false
	}
	return m.Type, m.Offset, true
}

// recordPos builds a diag.Position for a member's declarator token, for
// the handful of record-layout errors that are genuinely reachable from
// valid-looking user C rather than a parser-guaranteed invariant.
func recordPos(tok *lexer.Token) diag.Position {
	if tok == nil {
		return diag.Position{}
	}
	file := ""
	if tok.File != nil {
		file = tok.File.String()
	}
	return diag.Position{File: file, Line: tok.Line}
}

func alignUp(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}
