package parser

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// registerBuiltins installs the variadic built-ins as symbols of kind
// builtin in the global scope at parser-construction time (spec 4.5
// "Variadic built-ins ... are registered as symbols of kind builtin in
// the global scope at init time"). __builtin_va_list is registered as a
// typedef to a plain `void *` (codegen's va_arg/va_start never look past
// a single pointer, per SPEC_FULL.md 4.7), so a translation unit can
// declare `__builtin_va_list ap;` without a <stdarg.h> to define it.
func registerBuiltins(pool *intern.Pool, global *sym.Scope) {
	reg := func(name string, id sym.Builtin) {
		if !global.AddSymbol(name, sym.NewBuiltin(pool.Intern(name), id)) {
			panic("internal error: builtin " + name + " registered twice on a fresh scope")
		}
	}
	reg("__builtin_va_start", sym.BuiltinVaStart)
	reg("__builtin_va_arg", sym.BuiltinVaArg)
	reg("__builtin_va_end", sym.BuiltinVaEnd)
	reg("__builtin_va_copy", sym.BuiltinVaCopy)

	vaListName := pool.Intern("__builtin_va_list")
	vaListType := sym.NewPointer(sym.TyVoid, false, false, false)
	if !global.AddTypedef("__builtin_va_list", sym.NewTypedef(vaListName, vaListType, nil)) {
		panic("internal error: __builtin_va_list registered twice on a fresh scope")
	}
}

// tryBuiltin parses a call to one of the variadic built-ins if tok names
// one, returning nil if tok is an ordinary identifier (spec 4.5 "parsed
// with bespoke logic").
func (p *Parser) tryBuiltin(tok *lexer.Token) *ast.Node {
	s := p.global.FindSymbol(tok.Text.String(), false)
	if s == nil || s.Kind != sym.BuiltinSym {
		return nil
	}
	p.lex.Take()
	p.skip("(")

	n := ast.New(ast.Builtin, tok)
	n.Op = tok.Text.String()
	n.BuiltinID = s.BuiltinID
	n.Type = sym.TyVoid

	switch s.BuiltinID {
	case sym.BuiltinVaStart:
		n.Append(p.assign()) // va_list
		p.skip(",")
		n.Append(p.assign()) // last named parameter
	case sym.BuiltinVaArg:
		n.Append(p.assign()) // va_list
		p.skip(",")
		n.Type = p.typeName()
	case sym.BuiltinVaEnd:
		n.Append(p.assign())
	case sym.BuiltinVaCopy:
		n.Append(p.assign())
		p.skip(",")
		n.Append(p.assign())
	}
	p.skip(")")
	return n
}
