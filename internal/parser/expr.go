package parser

import (
	"strconv"
	"strings"

	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// expr parses the comma operator: a sequence of assignment-expressions,
// the last of which supplies the value and type (spec 4.5 "Expressions").
func (p *Parser) expr() *ast.Node {
	n := p.assign()
	for p.consume(",") {
		tok := p.cur()
		rhs := p.assign()
		seq := ast.New(ast.Comma, tok)
		seq.Type = rhs.Type
		seq.Append(n)
		seq.Append(rhs)
		n = seq
	}
	return n
}

// constExpr evaluates a constant-expression at parse time (spec 4.5
// "Constant expressions"): integer literals, enum constants, integer
// casts, unary/binary integer operators, and the conditional operator.
// Non-constant input is fatal.
func (p *Parser) constExpr() int64 {
	n := p.conditional()
	v, ok := evalConst(n)
	if !ok {
		p.fatalf(n.Tok, "expected a constant expression")
	}
	return v
}

func evalConst(n *ast.Node) (int64, bool) {
	switch n.Kind {
	case ast.Num:
		return n.IntValue, true
	case ast.Cast:
		return evalConst(n.FirstChild)
	case ast.Neg:
		v, ok := evalConst(n.FirstChild)
		return -v, ok
	case ast.Not:
		v, ok := evalConst(n.FirstChild)
		if v == 0 {
			return 1, ok
		}
		return 0, ok
	case ast.BitNot:
		v, ok := evalConst(n.FirstChild)
		return ^v, ok
	case ast.Cond:
		cond, rest := n.FirstChild, n.FirstChild.Next
		then, els := rest, rest.Next
		cv, ok := evalConst(cond)
		if !ok {
			return 0, false
		}
		if cv != 0 {
			return evalConst(then)
		}
		return evalConst(els)
	}
	lhs := n.FirstChild
	if lhs == nil || lhs.Next == nil {
		return 0, false
	}
	a, ok1 := evalConst(lhs)
	b, ok2 := evalConst(lhs.Next)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch n.Kind {
	case ast.Add:
		return a + b, true
	case ast.Sub:
		return a - b, true
	case ast.Mul:
		return a * b, true
	case ast.Div:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ast.Mod:
		if b == 0 {
			return 0, false
		}
		return a % b, true
	case ast.Shl:
		return a << uint64(b), true
	case ast.Shr:
		return a >> uint64(b), true
	case ast.BitAnd:
		return a & b, true
	case ast.BitOr:
		return a | b, true
	case ast.BitXor:
		return a ^ b, true
	case ast.Eq:
		return boolToInt(a == b), true
	case ast.Ne:
		return boolToInt(a != b), true
	case ast.Lt:
		return boolToInt(a < b), true
	case ast.Le:
		return boolToInt(a <= b), true
	case ast.Gt:
		return boolToInt(a > b), true
	case ast.Ge:
		return boolToInt(a >= b), true
	case ast.LogAnd:
		return boolToInt(a != 0 && b != 0), true
	case ast.LogOr:
		return boolToInt(a != 0 || b != 0), true
	}
	return 0, false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// conditional parses `?:`, right-associative (spec 4.5).
func (p *Parser) conditional() *ast.Node {
	cond := p.logor()
	if !p.consume("?") {
		return cond
	}
	tok := p.cur()
	then := p.expr()
	p.skip(":")
	els := p.conditional()
	n := ast.New(ast.Cond, tok)
	n.Type = sym.Common(then.Type, els.Type)
	n.Append(ast.MakePredicate(cond))
	n.Append(ast.MakeCast(then, n.Type))
	n.Append(ast.MakeCast(els, n.Type))
	return n
}

// assign parses assignment, right-associative, desugaring compound forms
// (`+=` etc) into `CompoundAssign` nodes the generator lowers directly
// rather than re-evaluating the lvalue twice (spec 4.5).
func (p *Parser) assign() *ast.Node {
	lhs := p.conditional()
	tok := p.cur()
	switch {
	case p.consume("="):
		rhs := p.assign()
		n := ast.New(ast.Assign, tok)
		n.Type = lhs.Type
		n.Append(lhs)
		n.Append(ast.MakeCast(rhs, lhs.Type))
		return n
	case p.consume("+="), p.consume("-="), p.consume("*="), p.consume("/="),
		p.consume("%="), p.consume("&="), p.consume("|="), p.consume("^="),
		p.consume("<<="), p.consume(">>="):
		// The boolean chain above already consumed the operator token; grab
		// its spelling from the already-advanced tok capture instead.
		op := tok.Text.String()
		rhs := p.assign()
		n := ast.New(ast.CompoundAssign, tok)
		n.Op = op
		n.Type = lhs.Type
		n.Append(lhs)
		n.Append(rhs)
		return n
	}
	return lhs
}

func (p *Parser) logor() *ast.Node {
	n := p.logand()
	for p.lex.Is("||") {
		tok := p.lex.Take()
		rhs := p.logand()
		b := ast.New(ast.LogOr, tok)
		b.Type = sym.TyInt
		b.Append(ast.MakePredicate(n))
		b.Append(ast.MakePredicate(rhs))
		n = b
	}
	return n
}

func (p *Parser) logand() *ast.Node {
	n := p.bitor()
	for p.lex.Is("&&") {
		tok := p.lex.Take()
		rhs := p.bitor()
		b := ast.New(ast.LogAnd, tok)
		b.Type = sym.TyInt
		b.Append(ast.MakePredicate(n))
		b.Append(ast.MakePredicate(rhs))
		n = b
	}
	return n
}

func (p *Parser) bitor() *ast.Node  { return p.binaryLevel(ast.BitOr, []string{"|"}, p.bitxor) }
func (p *Parser) bitxor() *ast.Node { return p.binaryLevel(ast.BitXor, []string{"^"}, p.bitand) }
func (p *Parser) bitand() *ast.Node { return p.binaryLevel(ast.BitAnd, []string{"&"}, p.equality) }

// binaryLevel is a small helper for the bitwise precedence levels, which
// unlike arithmetic never need pointer-arithmetic scaling.
func (p *Parser) binaryLevel(kind ast.Kind, ops []string, next func() *ast.Node) *ast.Node {
	n := next()
	for {
		matched := false
		for _, op := range ops {
			if p.lex.Is(op) {
				tok := p.lex.Take()
				rhs := next()
				ty := sym.Common(n.Type, rhs.Type)
				b := ast.New(kind, tok)
				b.Type = ty
				b.Append(ast.MakeCast(n, ty))
				b.Append(ast.MakeCast(rhs, ty))
				n = b
				matched = true
				break
			}
		}
		if !matched {
			return n
		}
	}
}

func (p *Parser) equality() *ast.Node {
	n := p.relational()
	for p.lex.Is("==") || p.lex.Is("!=") {
		tok := p.lex.Take()
		rhs := p.relational()
		kind := ast.Eq
		if tok.Is("!=") {
			kind = ast.Ne
		}
		ty := sym.Common(n.Type, rhs.Type)
		b := ast.New(kind, tok)
		b.Type = sym.TyInt
		b.Append(ast.MakeCast(n, ty))
		b.Append(ast.MakeCast(rhs, ty))
		n = b
	}
	return n
}

func (p *Parser) relational() *ast.Node {
	n := p.shift()
	for {
		var kind ast.Kind
		switch {
		case p.lex.Is("<"):
			kind = ast.Lt
		case p.lex.Is("<="):
			kind = ast.Le
		case p.lex.Is(">"):
			kind = ast.Gt
		case p.lex.Is(">="):
			kind = ast.Ge
		default:
			return n
		}
		tok := p.lex.Take()
		rhs := p.shift()
		ty := sym.Common(n.Type, rhs.Type)
		b := ast.New(kind, tok)
		b.Type = sym.TyInt
		b.Append(ast.MakeCast(n, ty))
		b.Append(ast.MakeCast(rhs, ty))
		n = b
	}
}

func (p *Parser) shift() *ast.Node {
	n := p.add()
	for p.lex.Is("<<") || p.lex.Is(">>") {
		tok := p.lex.Take()
		rhs := p.add()
		kind := ast.Shl
		if tok.Is(">>") {
			kind = ast.Shr
		}
		lty := sym.Promote(n.Type)
		b := ast.New(kind, tok)
		b.Type = lty
		b.Append(ast.MakeCast(n, lty))
		b.Append(ast.PromoteInt(rhs))
		n = b
	}
	return n
}

// add parses `+`/`-`, applying pointer-arithmetic scaling (spec 4.5
// "Pointer arithmetic": ptr+int scales by size(pointee); ptr-ptr divides
// by size).
func (p *Parser) add() *ast.Node {
	n := p.mul()
	for p.lex.Is("+") || p.lex.Is("-") {
		tok := p.lex.Take()
		rhs := p.mul()
		if tok.Is("+") {
			n = p.newAdd(n, rhs, tok)
		} else {
			n = p.newSub(n, rhs, tok)
		}
	}
	return n
}

func (p *Parser) newAdd(lhs, rhs *ast.Node, tok *lexer.Token) *ast.Node {
	lhs, rhs = ast.Decay(lhs), ast.Decay(rhs)
	if lhs.Type.IsArithmetic() && rhs.Type.IsArithmetic() {
		ty := sym.Common(lhs.Type, rhs.Type)
		n := ast.New(ast.Add, tok)
		n.Type = ty
		n.Append(ast.MakeCast(lhs, ty))
		n.Append(ast.MakeCast(rhs, ty))
		return n
	}
	if lhs.Type.IsIndirection() && rhs.Type.IsIndirection() {
		p.fatalf(tok, "invalid operands to pointer addition")
	}
	if !lhs.Type.IsIndirection() && rhs.Type.IsIndirection() {
		lhs, rhs = rhs, lhs
	}
	n := ast.New(ast.Add, tok)
	n.Type = lhs.Type
	n.Append(lhs)
	n.Append(p.scaleIndex(rhs, lhs.Type))
	return n
}

func (p *Parser) newSub(lhs, rhs *ast.Node, tok *lexer.Token) *ast.Node {
	lhs, rhs = ast.Decay(lhs), ast.Decay(rhs)
	if lhs.Type.IsArithmetic() && rhs.Type.IsArithmetic() {
		ty := sym.Common(lhs.Type, rhs.Type)
		n := ast.New(ast.Sub, tok)
		n.Type = ty
		n.Append(ast.MakeCast(lhs, ty))
		n.Append(ast.MakeCast(rhs, ty))
		return n
	}
	if lhs.Type.IsIndirection() && rhs.Type.IsIndirection() {
		n := ast.New(ast.Div, tok)
		n.Type = sym.TyLong
		diff := ast.New(ast.Sub, tok)
		diff.Type = sym.TyLong
		diff.Append(ast.MakeCast(lhs, sym.TyLong))
		diff.Append(ast.MakeCast(rhs, sym.TyLong))
		n.Append(diff)
		sz := ast.New(ast.Num, tok)
		sz.Type = sym.TyLong
		sz.IntValue = lhs.Type.Of.Size()
		n.Append(sz)
		return n
	}
	n := ast.New(ast.Sub, tok)
	n.Type = lhs.Type
	n.Append(lhs)
	n.Append(p.scaleIndex(rhs, lhs.Type))
	return n
}

// scaleIndex multiplies an integer index by the pointee size of ptrType,
// so the generator's pointer-arithmetic add/sub always see byte offsets
// (spec 4.7 "pointer arithmetic applies a shift ... or a multiply").
func (p *Parser) scaleIndex(idx *ast.Node, ptrType *sym.Type) *ast.Node {
	idx = ast.MakeCast(idx, sym.TyLong)
	size := ptrType.Of.Size()
	if size == 1 {
		return idx
	}
	mul := ast.New(ast.Mul, idx.Tok)
	mul.Type = sym.TyLong
	mul.Append(idx)
	szNode := ast.New(ast.Num, idx.Tok)
	szNode.Type = sym.TyLong
	szNode.IntValue = size
	mul.Append(szNode)
	return mul
}

func (p *Parser) mul() *ast.Node {
	n := p.castExpr()
	for p.lex.Is("*") || p.lex.Is("/") || p.lex.Is("%") {
		tok := p.lex.Take()
		rhs := p.castExpr()
		kind := ast.Mul
		if tok.Is("/") {
			kind = ast.Div
		} else if tok.Is("%") {
			kind = ast.Mod
		}
		ty := sym.Common(n.Type, rhs.Type)
		b := ast.New(kind, tok)
		b.Type = ty
		b.Append(ast.MakeCast(n, ty))
		b.Append(ast.MakeCast(rhs, ty))
		n = b
	}
	return n
}

// castExpr parses an explicit, unchecked cast (spec 4.5 "Cast is explicit
// and unchecked"), or a compound literal `(T){...}` (spec 4.5 "Compound
// literals").
func (p *Parser) castExpr() *ast.Node {
	if p.lex.Is("(") {
		tok := p.cur()
		save := p.lex.Snapshot()
		p.lex.Take()
		if p.isTypename() {
			ty := p.typeName()
			p.skip(")")
			if p.lex.Is("{") {
				return p.postfixSuffixes(p.compoundLiteral(ty, tok))
			}
			operand := p.castExpr()
			return ast.MakeCast(operand, ty)
		}
		p.lex.Restore(save)
	}
	return p.unary()
}

// compoundLiteral parses the brace initializer of `(T){...}` and lowers
// it to an anonymous object of type ty, declared and initialised exactly
// like a local variable (localDeclaration's pattern) and yielded as a
// statement expression so the literal can be used as an lvalue at its
// use site (spec 4.5 "Compound literals").
func (p *Parser) compoundLiteral(ty *sym.Type, tok *lexer.Token) *ast.Node {
	name := p.uniqueName("__compound_literal_")
	s := sym.NewVariable(p.intern(name), ty, tok)
	s.IsDefined = true
	if !p.scope.AddSymbol(name, s) {
		panic("internal error: generated compound-literal name " + name + " collided")
	}

	declNode := ast.New(ast.Decl, tok)
	declNode.Sym = s
	declNode.Type = ty
	declNode.Append(p.initList(ty))

	varNode := ast.New(ast.Var, tok)
	varNode.Sym = s
	varNode.Type = ty
	exprStmt := ast.New(ast.ExprStmt, tok)
	exprStmt.Append(varNode)

	n := ast.New(ast.StmtExpr, tok)
	n.Type = ty
	n.Append(declNode)
	n.Append(exprStmt)
	return n
}

// unary parses `++ -- + - ! ~ * & sizeof` and falls through to postfix
// (spec 4.5).
func (p *Parser) unary() *ast.Node {
	tok := p.cur()
	switch {
	case p.consume("+"):
		return p.castExpr()
	case p.lex.Is("-"):
		p.lex.Take()
		operand := p.castExpr()
		n := ast.New(ast.Neg, tok)
		n.Type = operand.Type
		n.Append(operand)
		return n
	case p.lex.Is("!"):
		p.lex.Take()
		operand := ast.MakePredicate(p.castExpr())
		n := ast.New(ast.Not, tok)
		n.Type = sym.TyInt
		n.Append(operand)
		return n
	case p.lex.Is("~"):
		p.lex.Take()
		operand := p.castExpr()
		n := ast.New(ast.BitNot, tok)
		n.Type = operand.Type
		n.Append(operand)
		return n
	case p.lex.Is("&"):
		p.lex.Take()
		operand := p.castExpr() // NOT decayed: `&arr` yields a pointer-to-array
		n := ast.New(ast.Addr, tok)
		n.Type = sym.NewPointer(operand.Type, false, false, false)
		n.Append(operand)
		return n
	case p.lex.Is("*"):
		p.lex.Take()
		operand := ast.Decay(p.castExpr())
		n := ast.New(ast.Deref, tok)
		if operand.Type.IsIndirection() {
			n.Type = operand.Type.Of
		}
		n.Append(operand)
		return n
	case p.lex.Is("++"):
		p.lex.Take()
		operand := p.unary()
		return p.newIncDec(ast.PreInc, operand, tok)
	case p.lex.Is("--"):
		p.lex.Take()
		operand := p.unary()
		return p.newIncDec(ast.PreDec, operand, tok)
	}
	if tok.Is("sizeof") {
		return p.sizeofExpr()
	}
	return p.postfix()
}

func (p *Parser) newIncDec(kind ast.Kind, operand *ast.Node, tok *lexer.Token) *ast.Node {
	n := ast.New(kind, tok)
	n.Type = operand.Type
	n.Append(operand)
	return n
}

// sizeofExpr parses `sizeof (type-name)` or `sizeof unary-expr` (spec 4.5:
// primary expressions include literals; sizeof's operand is never
// evaluated, only its type matters).
func (p *Parser) sizeofExpr() *ast.Node {
	tok := p.lex.Take() // "sizeof"
	if p.lex.Is("(") {
		save := p.lex.Snapshot()
		p.lex.Take()
		if p.isTypename() {
			ty := p.typeName()
			p.skip(")")
			return p.sizeofResult(ty, tok)
		}
		p.lex.Restore(save)
	}
	operand := p.unary()
	return p.sizeofResult(operand.Type, tok)
}

func (p *Parser) sizeofResult(ty *sym.Type, tok *lexer.Token) *ast.Node {
	n := ast.New(ast.Num, tok)
	n.Type = sym.TyULong
	n.IntValue = ty.Size()
	return n
}

// postfix parses function call, `. ->`, subscript, and `++ --` postfix
// operators (spec 4.5).
func (p *Parser) postfix() *ast.Node {
	return p.postfixSuffixes(p.primary())
}

// postfixSuffixes applies any run of postfix operators to an
// already-parsed primary expression. A compound literal is itself a
// postfix-expression production (spec 4.5 "Compound literals"), so
// castExpr reuses this directly instead of going through primary again.
func (p *Parser) postfixSuffixes(n *ast.Node) *ast.Node {
	for {
		tok := p.cur()
		switch {
		case p.lex.Is("("):
			n = p.funcall(n)
		case p.lex.Is("["):
			p.lex.Take()
			idx := p.expr()
			p.skip("]")
			added := p.newAdd(n, idx, tok)
			n = p.derefNode(added, tok)
		case p.lex.Is("."):
			p.lex.Take()
			n = p.memberAccess(n, tok, false)
		case p.lex.Is("->"):
			p.lex.Take()
			n = p.memberAccess(n, tok, true)
		case p.lex.Is("++"):
			p.lex.Take()
			n = p.newIncDec(ast.PostInc, n, tok)
		case p.lex.Is("--"):
			p.lex.Take()
			n = p.newIncDec(ast.PostDec, n, tok)
		default:
			return n
		}
	}
}

func (p *Parser) derefNode(ptr *ast.Node, tok *lexer.Token) *ast.Node {
	n := ast.New(ast.Deref, tok)
	if ptr.Type.IsIndirection() {
		n.Type = ptr.Type.Of
	}
	n.Append(ptr)
	return n
}

// memberAccess builds `.`/`->` (spec 4.7 "compute base address, add the
// field's constant offset").
func (p *Parser) memberAccess(base *ast.Node, tok *lexer.Token, arrow bool) *ast.Node {
	nameTok := p.cur()
	if nameTok.Kind != lexer.Alnum {
		p.fatalf(nameTok, "expected a member name")
	}
	p.lex.Take()

	recvType := base.Type
	if arrow {
		if !recvType.IsIndirection() {
			p.fatalf(tok, "-> used on a non-pointer")
		}
		recvType = recvType.Of
	}
	if recvType.Base != sym.RecordBase {
		p.fatalf(tok, "member access on a non-struct/union type")
	}
	mtype, offset, ok := recvType.Rec.Find(nameTok.Text.String())
	if !ok {
		p.fatalf(nameTok, "no member named %q", nameTok.Text.String())
	}

	kind := ast.Member
	if arrow {
		kind = ast.MemberPtr
	}
	n := ast.New(kind, tok)
	n.Type = mtype
	n.MemberName = nameTok.Text
	n.MemberOffset = offset
	n.Append(base)
	return n
}

// funcall parses the argument list of a call whose callee is fn (spec
// 4.5; spec 4.7 "evaluate each argument left-to-right").
func (p *Parser) funcall(fn *ast.Node) *ast.Node {
	tok := p.skip("(")
	var args []*ast.Node
	for !p.lex.Is(")") {
		if len(args) > 0 {
			p.skip(",")
		}
		args = append(args, p.assign())
	}
	p.skip(")")

	n := ast.New(ast.Call, tok)
	calleeType := fn.Type
	if calleeType.IsIndirection() {
		calleeType = calleeType.Of
	}
	if calleeType.IsFunction() {
		n.Type = calleeType.Of
		for i, a := range args {
			// An old-style declarator's parameters are unspecified, so a
			// call through it is never checked against Params (spec 4.5
			// "K&R function declarators").
			if calleeType.HasPrototype && i < len(calleeType.Params) {
				args[i] = ast.MakeCast(a, calleeType.Params[i])
			} else {
				args[i] = ast.Decay(a)
			}
		}
	} else {
		n.Type = sym.TyInt
	}
	n.Append(fn)
	for _, a := range args {
		n.Append(a)
	}
	return n
}

// primary parses identifiers, literals, parenthesised expressions, and
// statement expressions `({ ... })` (spec 4.5).
func (p *Parser) primary() *ast.Node {
	tok := p.cur()

	if p.lex.Is("(") {
		save := p.lex.Snapshot()
		p.lex.Take()
		if p.lex.Is("{") {
			n := p.stmtExpr(tok)
			p.skip(")")
			return n
		}
		p.lex.Restore(save)
		p.lex.Take()
		n := p.expr()
		p.skip(")")
		return n
	}

	switch tok.Kind {
	case lexer.Number:
		return p.numberLiteral()
	case lexer.Char:
		p.lex.Take()
		n := ast.New(ast.CharLit, tok)
		n.Type = sym.TyInt
		n.IntValue = int64(int8(tok.Bytes[0]))
		return n
	case lexer.String:
		p.lex.Take()
		n := ast.New(ast.StrLit, tok)
		n.Type = sym.NewArray(sym.TyChar, int64(len(tok.Bytes)))
		n.Bytes = tok.Bytes
		n.StrLabel = p.uniqueName("__S_")
		return n
	}

	if tok.Kind == lexer.Alnum {
		if tok.Is("__func__") {
			p.lex.Take()
			n := ast.New(ast.FuncName, tok)
			n.Type = sym.NewArray(sym.TyChar, int64(len(p.curFuncName)+1))
			n.StrLabel = p.curFuncName
			return n
		}
		if n := p.tryBuiltin(tok); n != nil {
			return n
		}
		s := p.scope.FindSymbol(tok.Text.String(), true)
		if s == nil {
			p.fatalf(tok, "undeclared identifier %q", tok.Text.String())
		}
		p.lex.Take()
		n := ast.New(ast.Var, tok)
		n.Sym = s
		n.Type = s.Type
		if s.Kind == sym.EnumConstSym {
			n.Kind = ast.Num
			n.IntValue = s.EnumValue
			n.Type = s.Type
		}
		return n
	}

	p.fatalf(tok, "expected an expression, got %q", tok.String())
	panic("unreachable")
}

// numberLiteral parses an integer or floating constant token (spec 4.1
// "numbers ... parsed later", resolved here at primary-expression time).
// An integer constant's type comes from its u/l suffixes alone; the
// magnitude of the value does not select a wider type.
func (p *Parser) numberLiteral() *ast.Node {
	tok := p.lex.Take()
	text := tok.Text.String()

	if strings.ContainsAny(text, ".") || (!strings.HasPrefix(text, "0x") && !strings.HasPrefix(text, "0X") && strings.ContainsAny(text, "eE")) {
		return p.floatLiteral(tok, text)
	}

	unsigned := false
	long := 0
	body := text
	for len(body) > 0 {
		last := body[len(body)-1]
		if last == 'u' || last == 'U' {
			unsigned = true
			body = body[:len(body)-1]
		} else if last == 'l' || last == 'L' {
			long++
			body = body[:len(body)-1]
		} else {
			break
		}
	}

	base := 10
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base = 16
		body = body[2:]
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		base = 2
		body = body[2:]
	case strings.HasPrefix(body, "0") && len(body) > 1:
		base = 8
		body = body[1:]
	}

	val, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		p.fatalf(tok, "invalid integer literal %q", text)
	}

	n := ast.New(ast.Num, tok)
	n.IntValue = int64(val)
	switch {
	case long >= 2 && unsigned:
		n.Type = sym.TyULLong
	case long >= 2:
		n.Type = sym.TyLLong
	case long == 1 && unsigned:
		n.Type = sym.TyULong
	case long == 1:
		n.Type = sym.TyLong
	case unsigned:
		n.Type = sym.TyUInt
	default:
		n.Type = sym.TyInt
	}
	return n
}

func (p *Parser) floatLiteral(tok *lexer.Token, text string) *ast.Node {
	ty := sym.TyDouble
	body := text
	if strings.HasSuffix(body, "f") || strings.HasSuffix(body, "F") {
		ty = sym.TyFloat
		body = body[:len(body)-1]
	} else if strings.HasSuffix(body, "l") || strings.HasSuffix(body, "L") {
		ty = sym.TyLDouble
		body = body[:len(body)-1]
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		p.fatalf(tok, "invalid floating literal %q", text)
	}
	n := ast.New(ast.FloatLit, tok)
	n.Type = ty
	n.FloatValue = v
	return n
}

// stmtExpr parses `({ stmt... })`: an ordered sequence of statements whose
// last non-void expression-statement supplies the value and type (spec
// 4.5 "Statement expressions").
func (p *Parser) stmtExpr(tok *lexer.Token) *ast.Node {
	p.skip("{")
	p.enterScope()
	n := ast.New(ast.StmtExpr, tok)
	var last *ast.Node
	for !p.lex.Is("}") {
		s := p.stmt()
		n.Append(s)
		if s.Kind == ast.ExprStmt {
			last = s.FirstChild
		} else {
			last = nil
		}
	}
	p.skip("}")
	p.leaveScope()
	if last != nil {
		n.Type = last.Type
	} else {
		n.Type = sym.TyVoid
	}
	return n
}
