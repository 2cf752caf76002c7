// Package sym implements the type system, struct/union/enum layout, and the
// scope/symbol tables (spec ch. 4.2, 4.3, 4.4). The three live in one
// package because Type's function declarators carry a prototype Scope and
// Symbol carries a Type — splitting them would create an import cycle, so
// this mirrors the teacher's own choice of keeping CType/Obj/Scope together
// in a single package.
package sym

import "github.com/vmcc-project/vmcc/internal/intern"

// BaseKind enumerates the primitive base types (spec 3 "Type").
type BaseKind int

const (
	Void BaseKind = iota
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LLong
	ULLong
	Float
	Double
	LDouble
	RecordBase
	EnumBase
)

// DeclKind distinguishes a declarator node from a base-type node.
type DeclKind int

const (
	NotDeclarator DeclKind = iota
	Pointer
	Array
	IndeterminateArray
	Function
)

// Type is either a base type (optionally const/volatile qualified) or a
// declarator wrapping a referenced type (spec 3 "Type"). Declarators form
// a singly-linked chain through Base, outermost to innermost.
type Type struct {
	Base BaseKind // meaningful when Decl == NotDeclarator
	Decl DeclKind

	Const, Volatile bool

	// Declarator chain: the type this one wraps (pointee/element/return).
	Of *Type

	// Pointer
	Restrict bool

	// Array / IndeterminateArray
	Length int64

	// Function
	Params     []*Type
	ParamNames []*intern.Symbol
	Variadic   bool
	// HasPrototype distinguishes an explicit parameter-type-list (even an
	// empty one spelled `(void)`) from old-style `f()`, whose parameters
	// are unspecified rather than absent: calls to such a function are
	// not checked against Params (SPEC_FULL.md 4.5 "K&R function
	// declarators").
	HasPrototype bool
	// ProtoScope holds parameter-scope tag declarations so they remain
	// visible when the function body is parsed (spec 4.5 "Prototype
	// scope").
	ProtoScope *Scope

	// Record / Enum base types
	Rec *Record
	Enm *Enum
}

// NewBase constructs a fresh (unshared) base type node.
func NewBase(b BaseKind) *Type {
	return &Type{Base: b, Decl: NotDeclarator}
}

// NewPointer wraps pointee in a pointer declarator.
func NewPointer(pointee *Type, isConst, isVolatile, isRestrict bool) *Type {
	return &Type{Decl: Pointer, Of: pointee, Const: isConst, Volatile: isVolatile, Restrict: isRestrict}
}

// NewArray wraps element in an array declarator of the given length.
func NewArray(element *Type, count int64) *Type {
	return &Type{Decl: Array, Of: element, Length: count}
}

// NewIndeterminate wraps element in a length-less array declarator, legal
// only as a function parameter or as a variable later completed by an
// initialiser or redeclaration (spec 3 invariants).
func NewIndeterminate(element *Type) *Type {
	return &Type{Decl: IndeterminateArray, Of: element}
}

// FunctionType builds a function declarator.
func FunctionType(ret *Type, params []*Type, names []*intern.Symbol, variadic bool, proto *Scope) *Type {
	return &Type{Decl: Function, Of: ret, Params: params, ParamNames: names, Variadic: variadic, ProtoScope: proto}
}

// RecordType wraps a Record as a base type.
func RecordType(r *Record) *Type {
	return &Type{Base: RecordBase, Decl: NotDeclarator, Rec: r}
}

// EnumType wraps an Enum as a base type; enums have the representation and
// rank of signed int (spec 4.3).
func EnumType(e *Enum) *Type {
	return &Type{Base: EnumBase, Decl: NotDeclarator, Enm: e}
}

// Qualify returns a shallow copy of t with const/volatile set, implementing
// the "qualifier wrapper sets the const/volatile bits on the outermost
// node" rule (spec 4.2).
func Qualify(t *Type, isConst, isVolatile bool) *Type {
	q := *t
	q.Const = q.Const || isConst
	q.Volatile = q.Volatile || isVolatile
	return &q
}

// IsIndirection reports whether t is a pointer or array (spec 4.2).
func (t *Type) IsIndirection() bool {
	return t.Decl == Pointer || t.Decl == Array || t.Decl == IndeterminateArray
}

func (t *Type) IsPointer() bool { return t.Decl == Pointer }
func (t *Type) IsArray() bool   { return t.Decl == Array || t.Decl == IndeterminateArray }
func (t *Type) IsFunction() bool { return t.Decl == Function }

// IsFlexibleArray is true for an indeterminate-length array, or a
// zero-length array declarator (spec 4.2).
func (t *Type) IsFlexibleArray() bool {
	return t.Decl == IndeterminateArray || (t.Decl == Array && t.Length == 0)
}

func (t *Type) IsInteger() bool {
	if t.Decl != NotDeclarator {
		return false
	}
	switch t.Base {
	case Bool, Char, SChar, UChar, Short, UShort, Int, UInt, Long, ULong, LLong, ULLong, EnumBase:
		return true
	}
	return false
}

func (t *Type) IsFloating() bool {
	if t.Decl != NotDeclarator {
		return false
	}
	return t.Base == Float || t.Base == Double || t.Base == LDouble
}

func (t *Type) IsArithmetic() bool {
	return t.IsInteger() || t.IsFloating()
}

func (t *Type) IsSigned() bool {
	switch t.Base {
	case Char, SChar, Short, Int, Long, LLong, EnumBase:
		return true
	}
	return false
}

// IsLongLong reports whether t is (unsigned) long long (spec 4.2).
func (t *Type) IsLongLong() bool {
	return t.Decl == NotDeclarator && (t.Base == LLong || t.Base == ULLong)
}

// Rank orders integer types bool < char < short < int < long < long long
// (spec 4.2 "Integer rank ordering").
func (t *Type) Rank() int {
	switch t.Base {
	case Bool:
		return 0
	case Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, EnumBase:
		return 3
	case Long, ULong:
		return 4
	case LLong, ULLong:
		return 5
	}
	return -1
}

// Size returns sizeof(t) in bytes (spec 4.2).
func (t *Type) Size() int64 {
	switch t.Decl {
	case Pointer, Function:
		return 8
	case Array:
		return t.Length * t.Of.Size()
	case IndeterminateArray:
		return 0
	}
	switch t.Base {
	case Void:
		return 1
	case Bool, Char, SChar, UChar:
		return 1
	case Short, UShort:
		return 2
	case Int, UInt, EnumBase:
		return 4
	case Long, ULong:
		return 8
	case LLong, ULLong:
		return 8
	case Float:
		return 4
	case Double:
		return 8
	case LDouble:
		return 16
	case RecordBase:
		return t.Rec.Size
	}
	return 0
}

// Alignment returns alignof(t) (spec 4.2).
func (t *Type) Alignment() int64 {
	switch t.Decl {
	case Pointer, Function:
		return 8
	case Array:
		return t.Of.Alignment()
	case IndeterminateArray:
		return t.Of.Alignment()
	}
	if t.Base == RecordBase {
		return t.Rec.Alignment
	}
	return t.Size()
}

// Equal compares structure including qualifiers (spec 4.2).
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Decl != b.Decl || a.Const != b.Const || a.Volatile != b.Volatile {
		return false
	}
	switch a.Decl {
	case NotDeclarator:
		if a.Base != b.Base {
			return false
		}
		if a.Base == RecordBase {
			return a.Rec == b.Rec
		}
		if a.Base == EnumBase {
			return a.Enm == b.Enm
		}
		return true
	case Pointer:
		return a.Restrict == b.Restrict && Equal(a.Of, b.Of)
	case Array:
		return a.Length == b.Length && Equal(a.Of, b.Of)
	case IndeterminateArray:
		return Equal(a.Of, b.Of)
	case Function:
		if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return Equal(a.Of, b.Of)
	}
	return false
}

// CompatibleUnqual compares structure ignoring top-level qualifiers (spec 4.2).
func CompatibleUnqual(a, b *Type) bool {
	ua := Qualify(a, false, false)
	ua.Const, ua.Volatile = false, false
	ub := Qualify(b, false, false)
	ub.Const, ub.Volatile = false, false
	return Equal(ua, ub)
}

// Decay implements array-to-pointer / function-to-pointer decay.
func Decay(t *Type) *Type {
	if t.Decl == Array || t.Decl == IndeterminateArray {
		return NewPointer(t.Of, false, false, false)
	}
	if t.Decl == Function {
		return NewPointer(t, false, false, false)
	}
	return t
}

// Commonly used singleton base types, matching the teacher's TyInt et al.
var (
	TyVoid    = NewBase(Void)
	TyBool    = NewBase(Bool)
	TyChar    = NewBase(Char)
	TySChar   = NewBase(SChar)
	TyUChar   = NewBase(UChar)
	TyShort   = NewBase(Short)
	TyUShort  = NewBase(UShort)
	TyInt     = NewBase(Int)
	TyUInt    = NewBase(UInt)
	TyLong    = NewBase(Long)
	TyULong   = NewBase(ULong)
	TyLLong   = NewBase(LLong)
	TyULLong  = NewBase(ULLong)
	TyFloat   = NewBase(Float)
	TyDouble  = NewBase(Double)
	TyLDouble = NewBase(LDouble)
)

// Promote implements integer promotion: any integer type narrower than int
// becomes int (signed if representable, else unsigned) (spec 4.5).
func Promote(t *Type) *Type {
	if !t.IsInteger() {
		return t
	}
	if t.Rank() >= TyInt.Rank() {
		return t
	}
	return TyInt
}

// Common implements the usual arithmetic conversions on two operand types
// of a binary arithmetic operator (spec 4.5).
func Common(a, b *Type) *Type {
	if a.IsPointer() || b.IsPointer() {
		if a.IsPointer() {
			return a
		}
		return b
	}
	a, b = Promote(a), Promote(b)
	if a.Base == LDouble || b.Base == LDouble {
		return TyLDouble
	}
	if a.Base == Double || b.Base == Double {
		return TyDouble
	}
	if a.Base == Float || b.Base == Float {
		return TyFloat
	}
	if a.Size() < 4 {
		a = TyInt
	}
	if b.Size() < 4 {
		b = TyInt
	}
	if a.Rank() != b.Rank() {
		if a.Rank() < b.Rank() {
			return signPreserving(b, a)
		}
		return signPreserving(a, b)
	}
	if a.IsSigned() != b.IsSigned() {
		if a.IsSigned() {
			return unsignedCounterpart(a)
		}
		return unsignedCounterpart(b)
	}
	return a
}

// signPreserving returns `wide` as-is: the wider rank always wins
// regardless of the narrower operand's signedness (spec 4.5).
func signPreserving(wide, _ *Type) *Type {
	return wide
}

func unsignedCounterpart(t *Type) *Type {
	switch t.Base {
	case Int, EnumBase:
		// An enum's underlying representation is `int` (spec 4.3), so at
		// equal rank it loses to an unsigned int the same way a plain
		// `int` would.
		return TyUInt
	case Long:
		return TyULong
	case LLong:
		return TyULLong
	}
	return t
}
