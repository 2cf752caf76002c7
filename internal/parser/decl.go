package parser

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// declAttr carries storage-class and function-specifier bits that
// declSpec accumulates alongside the type (spec 4.5 "Declaration
// specifiers").
type declAttr struct {
	IsTypedef bool
	IsStatic  bool
	IsExtern  bool
	IsInline  bool
}

// specBit is one bit of the type-specifier bitset validated against the
// fixed C17 6.7.2.2 combination table.
type specBit int

const (
	bitVoid specBit = 1 << iota
	bitBool
	bitChar
	bitShort
	bitInt
	bitLong
	bitLong2 // a second `long`
	bitFloat
	bitDouble
	bitSigned
	bitUnsigned
)

// declSpec parses declaration specifiers: storage-class, type-qualifiers,
// and type-specifiers, in any order, returning the base type and the
// accumulated attributes (spec 4.5). attr may be nil if the caller doesn't
// need storage-class info (e.g. inside a cast or sizeof).
func (p *Parser) declSpec(attr *declAttr) (*sym.Type, *declAttr) {
	if attr == nil {
		attr = &declAttr{}
	}

	var bits specBit
	var isConst, isVolatile bool
	var named *sym.Type // struct/union/enum/typedef base type, mutually exclusive with bits

	counted := 0
	for {
		tok := p.cur()
		if tok.Kind != lexer.Alnum {
			break
		}
		text := tok.Text.String()

		switch text {
		case "typedef":
			attr.IsTypedef = true
			p.lex.Take()
			continue
		case "static":
			attr.IsStatic = true
			p.lex.Take()
			continue
		case "extern":
			attr.IsExtern = true
			p.lex.Take()
			continue
		case "inline":
			attr.IsInline = true
			p.lex.Take()
			continue
		case "auto", "register", "restrict", "__restrict", "__restrict__", "_Noreturn", "_Thread_local", "__thread", "_Atomic":
			p.lex.Take()
			continue
		case "__attribute__":
			p.skipAttribute()
			continue
		case "const":
			isConst = true
			p.lex.Take()
			continue
		case "volatile":
			isVolatile = true
			p.lex.Take()
			continue
		case "void":
			bits |= bitVoid
			p.lex.Take()
			counted++
			continue
		case "_Bool":
			bits |= bitBool
			p.lex.Take()
			counted++
			continue
		case "char":
			bits |= bitChar
			p.lex.Take()
			counted++
			continue
		case "short":
			bits |= bitShort
			p.lex.Take()
			counted++
			continue
		case "int":
			bits |= bitInt
			p.lex.Take()
			counted++
			continue
		case "long":
			if bits&bitLong2 != 0 {
				p.fatalf(p.cur(), "long long long is too long")
			}
			if bits&bitLong != 0 {
				bits |= bitLong2
			} else {
				bits |= bitLong
			}
			p.lex.Take()
			counted++
			continue
		case "float":
			bits |= bitFloat
			p.lex.Take()
			counted++
			continue
		case "double":
			bits |= bitDouble
			p.lex.Take()
			counted++
			continue
		case "signed":
			bits |= bitSigned
			p.lex.Take()
			continue
		case "unsigned":
			bits |= bitUnsigned
			p.lex.Take()
			continue
		case "struct":
			p.lex.Take()
			named = p.structUnionDecl(true)
			counted++
			continue
		case "union":
			p.lex.Take()
			named = p.structUnionDecl(false)
			counted++
			continue
		case "enum":
			p.lex.Take()
			named = p.enumSpecifier()
			counted++
			continue
		}

		if named == nil && bits == 0 {
			if typedefSym := p.scope.FindTypedef(text, true); typedefSym != nil {
				named = typedefSym.Type
				p.lex.Take()
				counted++
				continue
			}
		}
		break
	}

	if counted == 0 && bits == 0 && named == nil {
		p.fatalf(p.cur(), "expected a type specifier")
	}

	var base *sym.Type
	if named != nil {
		base = named
	} else {
		base = baseFromBits(bits, p, p.cur())
	}
	return sym.Qualify(base, isConst, isVolatile), attr
}

// baseFromBits resolves the type-specifier bitset to a concrete base type
// against the fixed C17 6.7.2.2 table (spec 4.5, "long long long is
// rejected; signed/unsigned alone mean signed/unsigned int; char with
// neither signed nor unsigned is a distinct base type").
func baseFromBits(bits specBit, p *Parser, tok *lexer.Token) *sym.Type {
	switch {
	case bits == bitVoid:
		return sym.TyVoid
	case bits == bitBool:
		return sym.TyBool
	case bits == bitChar:
		return sym.TyChar
	case bits == bitChar|bitSigned:
		return sym.TySChar
	case bits == bitChar|bitUnsigned:
		return sym.TyUChar
	case bits == bitShort, bits == bitShort|bitSigned, bits == bitShort|bitInt, bits == bitShort|bitSigned|bitInt:
		return sym.TyShort
	case bits == bitShort|bitUnsigned, bits == bitShort|bitUnsigned|bitInt:
		return sym.TyUShort
	case bits == 0, bits == bitInt, bits == bitSigned, bits == bitSigned|bitInt:
		return sym.TyInt
	case bits == bitUnsigned, bits == bitUnsigned|bitInt:
		return sym.TyUInt
	case bits == bitLong, bits == bitLong|bitInt, bits == bitLong|bitSigned, bits == bitLong|bitSigned|bitInt:
		return sym.TyLong
	case bits == bitLong|bitUnsigned, bits == bitLong|bitUnsigned|bitInt:
		return sym.TyULong
	case bits&bitLong2 != 0 && bits&bitUnsigned != 0:
		return sym.TyULLong
	case bits&bitLong2 != 0:
		return sym.TyLLong
	case bits == bitFloat:
		return sym.TyFloat
	case bits == bitDouble:
		return sym.TyDouble
	case bits == bitDouble|bitLong:
		return sym.TyLDouble
	}
	p.fatalf(tok, "invalid combination of type specifiers")
	panic("unreachable")
}

// skipAttribute tolerates GNU __attribute__((...)) without interpreting it
// (supplemented from original_source, which never implements them either,
// per SPEC_FULL.md 4.5).
func (p *Parser) skipAttribute() {
	tok := p.cur()
	diag.Warn(p.Warnings, "attributes", p.pos(tok), "ignoring __attribute__, it has no semantic effect here")
	p.lex.Take() // __attribute__
	p.skip("(")
	p.skip("(")
	depth := 1
	for depth > 0 {
		if p.lex.Is("(") {
			depth++
		} else if p.lex.Is(")") {
			depth--
		}
		if p.cur().Kind == lexer.EOF {
			p.fatalf(p.cur(), "unterminated __attribute__")
		}
		p.lex.Take()
	}
	p.skip(")")
}

// declarator parses a pointer prefix, a direct declarator (identifier or
// parenthesised declarator), and postfix array/function modifiers,
// attaching them to base (spec 4.5 "Declarators").
//
// A "(" after the pointer prefix is ambiguous: in an abstract (nameless)
// declarator it may be the parameter list of a function type (e.g. the
// "(int)" in a parameter of type "void (int)"), or it may be grouping a
// nested declarator (e.g. the "(*fp)" in "int (*fp)(int)"). One token of
// lookahead resolves it: if what follows is a typename or an immediate
// ")", it's a parameter list. Otherwise the parenthesised part is skipped,
// the outer postfix suffix is resolved against base, and the parenthesised
// part is re-parsed with that resolved type as its base -- mirroring the
// teacher's own two-pass declarator/skipParen, adapted to a rewindable
// lexer snapshot instead of a re-walkable token list.
func (p *Parser) declarator(base *sym.Type) (*sym.Type, *lexer.Token) {
	t := p.pointers(base)
	if p.lex.Is("(") {
		save := p.lex.Snapshot()
		p.lex.Take()
		if p.isTypename() || p.lex.Is(")") {
			return p.funcParams(t), nil
		}
		p.skipParenTokens()
		suffixed := p.typeSuffix(t)
		after := p.lex.Snapshot()
		p.lex.Restore(save)
		p.lex.Take() // re-consume "("
		inner, name := p.declarator(suffixed)
		p.lex.Restore(after)
		return inner, name
	}
	tok := p.cur()
	var name *lexer.Token
	if tok.Kind == lexer.Alnum && !isReservedKeyword(tok.Text.String()) {
		name = p.lex.Take()
	}
	return p.typeSuffix(t), name
}

// asmLabel parses an optional `__asm__("literal")` declarator suffix,
// renaming the symbol's emitted label away from its C name (grounded on
// Onramp's parse_decl.c asm-name renaming; SPEC_FULL.md 4.5 "__asm__
// renaming").
func (p *Parser) asmLabel() (string, bool) {
	if !p.lex.Is("__asm__") && !p.lex.Is("asm") {
		return "", false
	}
	p.lex.Take()
	p.skip("(")
	tok := p.cur()
	if tok.Kind != lexer.String {
		p.fatalf(tok, "expected a string literal asm label")
	}
	p.lex.Take()
	p.skip(")")
	return string(tok.Bytes), true
}

// skipParenTokens consumes a balanced run of tokens up to and including
// the ")" matching the "(" already consumed by the caller.
func (p *Parser) skipParenTokens() {
	depth := 1
	for depth > 0 {
		if p.lex.Is("(") {
			depth++
		} else if p.lex.Is(")") {
			depth--
		}
		if p.cur().Kind == lexer.EOF {
			p.fatalf(p.cur(), "unterminated parenthesised declarator")
		}
		p.lex.Take()
	}
}

func isReservedKeyword(s string) bool {
	_, ok := keywordSet[s]
	return ok
}

// abstractDeclarator parses a declarator with no identifier, legal where
// types are named (casts, sizeof, function parameters) (spec 4.5).
func (p *Parser) abstractDeclarator(base *sym.Type) *sym.Type {
	t, _ := p.declarator(base)
	return t
}

// pointers consumes a run of `*` (each optionally followed by
// const/volatile/restrict) and wraps base in nested pointer declarators.
func (p *Parser) pointers(base *sym.Type) *sym.Type {
	t := base
	for p.consume("*") {
		isConst, isVolatile, isRestrict := false, false, false
		for {
			switch {
			case p.consume("const"):
				isConst = true
			case p.consume("volatile"):
				isVolatile = true
			case p.consume("restrict"), p.consume("__restrict"), p.consume("__restrict__"):
				isRestrict = true
			default:
				goto done
			}
		}
	done:
		t = sym.NewPointer(t, isConst, isVolatile, isRestrict)
	}
	return t
}

// typeSuffix parses postfix array/function declarator modifiers in source
// order, attaching them to the innermost declarator (spec 4.5
// "Array/function postfixes attach to the innermost declarator").
func (p *Parser) typeSuffix(t *sym.Type) *sym.Type {
	if p.consume("(") {
		if t.IsFunction() {
			p.fatalf(p.cur(), "function returning function is not allowed")
		}
		return p.funcParams(t)
	}
	if p.consume("[") {
		if t.IsFunction() {
			p.fatalf(p.cur(), "function returning array is not allowed")
		}
		if p.consume("]") {
			elem := p.typeSuffix(t)
			return sym.NewIndeterminate(elem)
		}
		length := p.constExpr()
		p.skip("]")
		elem := p.typeSuffix(t)
		return sym.NewArray(elem, length)
	}
	return t
}

// funcParams parses a parameter-type-list after the opening `(` has been
// consumed, building a prototype scope so struct/union/enum tags declared
// inline stay visible for the function body (spec 4.5 "Function
// definitions").
func (p *Parser) funcParams(ret *sym.Type) *sym.Type {
	proto := sym.NewScope(p.scope)
	outer := p.scope
	p.scope = proto

	var params []*sym.Type
	var names []*intern.Symbol
	variadic := false

	if p.lex.Is("void") {
		save := p.lex.Snapshot()
		p.lex.Take()
		if p.lex.Is(")") {
			p.lex.Take()
			p.scope = outer
			ty := sym.FunctionType(ret, nil, nil, false, proto)
			ty.HasPrototype = true
			return ty
		}
		p.lex.Restore(save)
	}

	// An old-style `f()` declarator leaves the parens empty with no
	// `void`: its parameters are unspecified, not an explicit empty
	// list, so it must not be mistaken for `f(void)` (SPEC_FULL.md 4.5
	// "K&R function declarators").
	hasPrototype := !p.lex.Is(")")

	for !p.lex.Is(")") {
		if len(params) > 0 {
			p.skip(",")
		}
		if p.consume("...") {
			variadic = true
			break
		}
		pspec, _ := p.declSpec(nil)
		ptype, ptok := p.declarator(pspec)
		ptype = sym.Decay(ptype) // "arrays in parameter lists decay to pointers"
		params = append(params, ptype)
		var nm *intern.Symbol
		if ptok != nil {
			nm = ptok.Text
		}
		names = append(names, nm)
	}
	p.skip(")")
	p.scope = outer
	ty := sym.FunctionType(ret, params, names, variadic, proto)
	ty.HasPrototype = hasPrototype
	return ty
}

// typeName parses a type name for casts/sizeof: declaration specifiers
// followed by an optional abstract declarator (spec 4.5).
func (p *Parser) typeName() *sym.Type {
	base, _ := p.declSpec(nil)
	return p.abstractDeclarator(base)
}

func (p *Parser) isTypename() bool {
	tok := p.cur()
	if tok.Kind != lexer.Alnum {
		return false
	}
	text := tok.Text.String()
	if _, ok := typeKeywordSet[text]; ok {
		return true
	}
	return p.scope.FindTypedef(text, true) != nil
}

// structUnionDecl parses `struct`/`union` after the keyword has been
// consumed: an optional tag, then an optional brace-enclosed member list
// (spec 4.5 "Struct/union").
func (p *Parser) structUnionDecl(isStruct bool) *sym.Type {
	var tag *intern.Symbol
	tagTok := p.cur()
	if tagTok.Kind == lexer.Alnum {
		tag = tagTok.Text
		p.lex.Take()
	}

	if !p.lex.Is("{") {
		if tag == nil {
			p.fatalf(p.cur(), "expected a struct/union tag or body")
		}
		if existing := p.scope.FindTag(tag.String(), true); existing != nil && existing.Base == sym.RecordBase {
			return existing
		}
		rec := sym.NewRecord(tag, isStruct)
		t := sym.RecordType(rec)
		p.scope.AddTag(tag.String(), t)
		return t
	}

	rec := sym.NewRecord(tag, isStruct)
	t := sym.RecordType(rec)
	if tag != nil {
		if existing := p.scope.FindTag(tag.String(), false); existing != nil {
			p.fatalf(tagTok, "redefinition of tag %q", tag.String())
		}
		p.scope.AddTag(tag.String(), t)
	}
	p.skip("{")
	p.structMembers(rec)
	rec.IsDefined = true
	return t
}

// structMembers parses the brace-enclosed member-declaration list (spec
// 4.5 "each member declarator may include a bit-field width").
func (p *Parser) structMembers(rec *sym.Record) {
	for !p.lex.Is("}") {
		if p.consume("_Static_assert") || p.consume("static_assert") {
			p.staticAssertion()
			continue
		}
		mspec, _ := p.declSpec(nil)

		first := true
		for !p.consume(";") {
			if !first {
				p.skip(",")
			}
			first = false

			mtype, mtok := p.declarator(mspec)
			var name *intern.Symbol
			if mtok != nil {
				name = mtok.Text
			}
			if name != nil && rec.HasMember(name.String()) {
				p.fatalf(mtok, "duplicate member name %q", name.String())
			}
			if name == nil && mtype.Base != sym.RecordBase && !p.lex.Is(":") {
				p.fatalf(p.cur(), "expected a member name")
			}

			memberTok := mtok
			if memberTok == nil {
				memberTok = p.cur()
			}
			m := rec.Add(name, mtype, memberTok)
			if p.consume(":") {
				width := p.constExpr()
				if width < 0 || width > 64 {
					p.fatalf(p.cur(), "invalid bit-field width %d", width)
				}
				m.IsBitfield = true
				m.BitWidth = width
			}
		}
	}
	p.skip("}")
}

// enumSpecifier parses `enum` after the keyword has been consumed: an
// optional tag, then an optional brace-enclosed enumerator list requiring
// at least one enumerator with a permitted trailing comma (spec 4.5
// "Enum").
func (p *Parser) enumSpecifier() *sym.Type {
	var tag *intern.Symbol
	tagTok := p.cur()
	if tagTok.Kind == lexer.Alnum {
		tag = tagTok.Text
		p.lex.Take()
	}

	if !p.lex.Is("{") {
		if tag == nil {
			p.fatalf(p.cur(), "expected an enum tag or body")
		}
		existing := p.scope.FindTag(tag.String(), true)
		if existing == nil || existing.Base != sym.EnumBase {
			p.fatalf(tagTok, "undefined enum %q", tag.String())
		}
		return existing
	}

	enm := sym.NewEnum(tag)
	t := sym.EnumType(enm)
	p.skip("{")

	for {
		nameTok := p.cur()
		if nameTok.Kind != lexer.Alnum {
			p.fatalf(nameTok, "expected an enumerator name")
		}
		p.lex.Take()
		var value int64
		if p.consume("=") {
			value = p.constExpr()
		} else {
			value = enm.NextValue()
		}
		enm.Add(nameTok.Text, value)
		csym := sym.NewEnumConstSymbol(nameTok.Text, t, value, nameTok)
		if !p.scope.AddSymbol(nameTok.Text.String(), csym) {
			p.fatalf(nameTok, "redeclaration of enumerator %q", nameTok.Text.String())
		}

		if !p.consume(",") {
			break
		}
		if p.lex.Is("}") {
			break // trailing comma permitted
		}
	}
	p.skip("}")

	if tag != nil {
		if existing := p.scope.FindTag(tag.String(), false); existing != nil {
			p.fatalf(tagTok, "redefinition of tag %q", tag.String())
		}
		p.scope.AddTag(tag.String(), t)
	}
	return t
}

// parseTypedef parses one or more comma-separated typedef declarators
// sharing base, registering each in the typedef namespace.
func (p *Parser) parseTypedef(base *sym.Type) {
	first := true
	for !p.consume(";") {
		if !first {
			p.skip(",")
		}
		first = false
		t, tok := p.declarator(base)
		if tok == nil {
			p.fatalf(p.cur(), "expected a typedef name")
		}
		td := sym.NewTypedef(tok.Text, t, tok)
		if !p.scope.AddTypedef(tok.Text.String(), td) {
			existing := p.scope.FindTypedef(tok.Text.String(), false)
			if !sym.CompatibleUnqual(existing.Type, t) {
				p.fatalf(tok, "typedef %q redefined with a different type", tok.Text.String())
			}
		}
	}
}

// globalDeclaration parses one top-level declaration: a sequence of
// comma-separated declarators sharing spec, each either a variable
// declaration (with optional initializer) or, if followed directly by `{`,
// a function definition (spec 4.5 "Function definitions": only file-scope
// functions may be defined).
func (p *Parser) globalDeclaration(spec *sym.Type, attr *declAttr) {
	first := true
	for {
		if !first {
			if !p.consume(",") {
				break
			}
		}
		first = false

		t, tok := p.declarator(spec)
		if tok == nil {
			p.fatalf(p.cur(), "expected a declarator name")
		}
		name := tok.Text
		asmName, hasAsmName := p.asmLabel()

		if t.IsFunction() && p.lex.Is("{") {
			p.funcDefinition(t, name, tok, attr, asmName, hasAsmName)
			return
		}

		hasInit := p.lex.Is("=")
		s := sym.NewVariable(name, t, tok)
		s.IsDefined = hasInit || !attr.IsExtern
		s.IsTentative = !hasInit && !attr.IsExtern
		if attr.IsStatic {
			s.Linkage = sym.Internal
			s.AsmName = p.uniqueName("__L_" + name.String() + "_")
		} else {
			s.Linkage = sym.External
		}
		if hasAsmName {
			s.AsmName = asmName
		}
		if t.IsFunction() {
			s.Kind = sym.FuncSym
			s.IsDefined = false
			s.IsTentative = false
		}
		s = p.declareGlobal(name, s, tok)

		if p.consume("=") {
			if p.lex.Is("{") {
				p.GlobalInits[s] = p.initList(t)
			} else {
				p.GlobalInits[s] = ast.MakeCast(p.assign(), t)
			}
		}
	}
	p.skip(";")
}

// declareGlobal registers s at file scope (spec 4.4 scope_add_symbol),
// merging a compatible tentative redeclaration (`int x; int x;`, or a
// function prototype seen twice) into the symbol already on file scope
// rather than appending a second Symbol for the same name, and failing
// with a diagnostic on a genuine conflict such as `int f(int); int
// f(long);` (spec.md 4.4 "function re-declared with different argument
// types").
func (p *Parser) declareGlobal(name *intern.Symbol, s *sym.Symbol, tok *lexer.Token) *sym.Symbol {
	if p.scope.AddSymbol(name.String(), s) {
		p.global.AddSymbol(name.String(), s) // globals are always visible at file scope
		p.Globals = append(p.Globals, s)
		return s
	}

	existing := p.scope.FindSymbol(name.String(), false)
	if existing.Kind != s.Kind {
		p.fatalf(tok, "%q redeclared as a different kind of symbol", name.String())
	}
	compatible := sym.CompatibleUnqual(existing.Type, s.Type)
	if !compatible && existing.Type.IsFunction() && s.Type.IsFunction() {
		// A K&R-style declarator with no prototype is compatible with any
		// later prototype for the same name.
		compatible = !existing.Type.HasPrototype || !s.Type.HasPrototype
	}
	if !compatible {
		p.fatalf(tok, "%q redeclared with a conflicting type", name.String())
	}
	// A tentative definition (no initializer, spec 4.4) may repeat any
	// number of times; only two non-tentative definitions of the same
	// name actually conflict.
	existingFullDef := existing.IsDefined && !existing.IsTentative
	newFullDef := s.IsDefined && !s.IsTentative
	if existingFullDef && newFullDef {
		p.fatalf(tok, "redefinition of %q", name.String())
	}
	existing.IsDefined = existing.IsDefined || s.IsDefined
	existing.IsTentative = existing.IsTentative && s.IsTentative
	if s.AsmName != name.String() {
		existing.AsmName = s.AsmName
	}
	return existing
}

// funcDefinition parses `{ ... }` for a function prototyped by ty/name,
// re-entering the prototype scope so tag declarations inside it remain
// visible, then pushing a parameter scope before the body (spec 4.5
// "Function definitions").
func (p *Parser) funcDefinition(ty *sym.Type, name *intern.Symbol, tok *lexer.Token, attr *declAttr, asmName string, hasAsmName bool) {
	fn := sym.NewFunction(name, ty, tok)
	fn.IsDefined = true
	if attr.IsStatic {
		fn.Linkage = sym.Internal
	} else {
		fn.Linkage = sym.External
	}
	if hasAsmName {
		fn.AsmName = asmName
	}
	fn = p.declareGlobal(name, fn, tok)
	fn.Type = ty // the definition's own prototype/ProtoScope wins over an earlier declaration's

	p.scope = ty.ProtoScope
	p.enterScope()
	prevFunc := p.curFuncName
	p.curFuncName = name.String()
	prevGoto := p.gotoLabels
	p.gotoLabels = make(map[string]bool)

	paramSyms := make([]*sym.Symbol, len(ty.Params))
	for i, pt := range ty.Params {
		var pname *intern.Symbol
		if i < len(ty.ParamNames) {
			pname = ty.ParamNames[i]
		}
		if pname == nil {
			continue
		}
		pv := sym.NewVariable(pname, pt, nil)
		pv.IsDefined = true
		if !p.scope.AddSymbol(pname.String(), pv) {
			p.fatalf(tok, "duplicate parameter name %q", pname.String())
		}
		paramSyms[i] = pv
	}

	body := p.compoundStmt()

	p.curFuncName = prevFunc
	p.gotoLabels = prevGoto
	p.leaveScope()
	p.scope = p.global

	def := ast.New(ast.FuncDef, tok)
	def.Sym = fn
	def.Type = ty
	def.Params = paramSyms
	def.Append(body)
	p.Funcs = append(p.Funcs, def)
}

var keywordSet = map[string]struct{}{
	"void": {}, "char": {}, "short": {}, "int": {}, "long": {}, "struct": {},
	"union": {}, "typedef": {}, "_Bool": {}, "enum": {}, "static": {}, "extern": {},
	"signed": {}, "unsigned": {}, "const": {}, "volatile": {}, "auto": {}, "register": {},
	"restrict": {}, "float": {}, "double": {}, "inline": {}, "return": {}, "if": {},
	"else": {}, "for": {}, "while": {}, "do": {}, "switch": {}, "case": {}, "default": {},
	"break": {}, "continue": {}, "goto": {}, "sizeof": {},
}

var typeKeywordSet = map[string]struct{}{
	"void": {}, "char": {}, "short": {}, "int": {}, "long": {}, "struct": {},
	"union": {}, "_Bool": {}, "enum": {}, "signed": {}, "unsigned": {}, "const": {},
	"volatile": {}, "float": {}, "double": {},
}
