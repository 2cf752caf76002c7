package sym

import (
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
)

// SymKind tags what a Symbol denotes (spec 3 "Symbol").
type SymKind int

const (
	VarSym SymKind = iota
	FuncSym
	TypedefSym
	EnumConstSym
	BuiltinSym
)

// Linkage classifies visibility across translation units (spec 3, 4.4,
// GLOSSARY).
type Linkage int

const (
	NoLinkage Linkage = iota
	Internal
	External
)

func (l Linkage) String() string {
	switch l {
	case Internal:
		return "internal"
	case External:
		return "external"
	}
	return "none"
}

// Builtin identifies one of the compiler-recognized builtins registered at
// init time (spec 4.5 "Variadic built-ins").
type Builtin int

const (
	NotBuiltin Builtin = iota
	BuiltinVaStart
	BuiltinVaArg
	BuiltinVaEnd
	BuiltinVaCopy
	BuiltinFunc // __func__
)

// Symbol is a declared name: a variable, function, typedef, enum constant,
// or compiler builtin (spec 3 "Symbol").
type Symbol struct {
	Kind SymKind
	Name *intern.Symbol
	Type *Type
	Decl *lexer.Token

	// AsmName is the symbol's externally visible label, possibly distinct
	// from Name (static locals get a unique label; __asm__("name") renames
	// it explicitly) (spec 3, GLOSSARY "Asm name").
	AsmName string

	Linkage Linkage

	IsDefined   bool
	IsTentative bool
	IsHidden    bool

	// EnumConstSym payload
	EnumValue int64

	// BuiltinSym payload
	BuiltinID Builtin
}

// NewVariable creates an undefined variable/function symbol; call sites
// fill in Linkage/AsmName/etc. per the declaration context.
func NewVariable(name *intern.Symbol, t *Type, decl *lexer.Token) *Symbol {
	return &Symbol{Kind: VarSym, Name: name, Type: t, Decl: decl, AsmName: name.String()}
}

// NewFunction creates an undefined function symbol.
func NewFunction(name *intern.Symbol, t *Type, decl *lexer.Token) *Symbol {
	return &Symbol{Kind: FuncSym, Name: name, Type: t, Decl: decl, AsmName: name.String()}
}

// NewTypedef creates a typedef-namespace symbol.
func NewTypedef(name *intern.Symbol, t *Type, decl *lexer.Token) *Symbol {
	return &Symbol{Kind: TypedefSym, Name: name, Type: t, Decl: decl}
}

// NewEnumConstSymbol creates the ordinary-namespace constant symbol an
// enumerator is registered as (spec 4.3).
func NewEnumConstSymbol(name *intern.Symbol, enumType *Type, value int64, decl *lexer.Token) *Symbol {
	return &Symbol{Kind: EnumConstSym, Name: name, Type: enumType, Decl: decl, EnumValue: value, IsDefined: true}
}

// NewBuiltin creates a builtin symbol (spec 4.5).
func NewBuiltin(name *intern.Symbol, id Builtin) *Symbol {
	return &Symbol{Kind: BuiltinSym, Name: name, BuiltinID: id, IsDefined: true}
}
