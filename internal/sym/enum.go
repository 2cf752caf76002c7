package sym

import "github.com/vmcc-project/vmcc/internal/intern"

// EnumConst is one (name, value) pair of an enum (spec 3 "Enum").
type EnumConst struct {
	Name  *intern.Symbol
	Value int64
}

// Enum holds a tag and its ordered list of enumerator (name, value) pairs.
// The enumerators themselves are registered as ordinary-namespace constant
// symbols in the enclosing scope, not stored as symbols here (spec 3, 4.3).
type Enum struct {
	Tag      *intern.Symbol // optional
	Members  []*EnumConst
}

// NewEnum creates an empty enum with the given optional tag.
func NewEnum(tag *intern.Symbol) *Enum {
	return &Enum{Tag: tag}
}

// Add appends name = value to the enum's member list.
func (e *Enum) Add(name *intern.Symbol, value int64) *EnumConst {
	ec := &EnumConst{Name: name, Value: value}
	e.Members = append(e.Members, ec)
	return ec
}

// NextValue returns the auto-increment value for the next enumerator
// lacking an explicit constant expression (spec 4.3: "auto-increment from
// 0 unless an explicit constant expression is provided").
func (e *Enum) NextValue() int64 {
	if len(e.Members) == 0 {
		return 0
	}
	return e.Members[len(e.Members)-1].Value + 1
}
