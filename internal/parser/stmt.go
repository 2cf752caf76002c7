package parser

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// stmt parses one statement (spec 4.5, 4.7 "Statements emit into the
// current block").
func (p *Parser) stmt() *ast.Node {
	tok := p.cur()

	if tok.Kind == lexer.Alnum {
		switch tok.Text.String() {
		case "return":
			return p.returnStmt()
		case "if":
			return p.ifStmt()
		case "while":
			return p.whileStmt()
		case "do":
			return p.doStmt()
		case "for":
			return p.forStmt()
		case "switch":
			return p.switchStmt()
		case "case":
			return p.caseStmt()
		case "default":
			return p.defaultStmt()
		case "break":
			p.lex.Take()
			p.skip(";")
			n := ast.New(ast.Break, tok)
			if len(p.breakLabels) > 0 {
				n.Label = p.breakLabels[len(p.breakLabels)-1]
			}
			return n
		case "continue":
			p.lex.Take()
			p.skip(";")
			n := ast.New(ast.Continue, tok)
			if len(p.continueLabels) > 0 {
				n.Label = p.continueLabels[len(p.continueLabels)-1]
			}
			return n
		case "goto":
			p.lex.Take()
			nameTok := p.cur()
			p.lex.Take()
			p.skip(";")
			n := ast.New(ast.Goto, tok)
			n.Label = nameTok.Text.String()
			p.gotoLabels[n.Label] = true
			return n
		case "__asm__", "asm":
			return p.asmStmt()
		}

		// `identifier :` is a label.
		if nextIsColon(p) {
			p.lex.Take()
			p.skip(":")
			n := ast.New(ast.Label, tok)
			n.Label = tok.Text.String()
			p.gotoLabels[n.Label] = true
			n.Append(p.stmt())
			return n
		}
	}

	if p.lex.Is("{") {
		return p.compoundStmt()
	}

	if p.isTypename() {
		return p.localDeclaration()
	}

	return p.exprStmt()
}

// nextIsColon peeks whether the token after the current identifier is
// ":", without consuming either (statement-label lookahead).
func nextIsColon(p *Parser) bool {
	save := p.lex.Snapshot()
	p.lex.Take()
	isColon := p.lex.Is(":")
	p.lex.Restore(save)
	return isColon
}

// asmStmt tolerates a bare `__asm__("...")` statement (not wired to
// codegen; parsed only so the translation unit doesn't fail outright).
func (p *Parser) asmStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip("(")
	depth := 1
	for depth > 0 {
		if p.lex.Is("(") {
			depth++
		} else if p.lex.Is(")") {
			depth--
		}
		p.lex.Take()
	}
	p.skip(";")
	n := ast.New(ast.Block, tok)
	n.Type = sym.TyVoid
	return n
}

func (p *Parser) returnStmt() *ast.Node {
	tok := p.lex.Take()
	n := ast.New(ast.Return, tok)
	if !p.lex.Is(";") {
		n.Append(p.expr())
	}
	p.skip(";")
	return n
}

func (p *Parser) ifStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip("(")
	cond := ast.MakePredicate(p.expr())
	p.skip(")")
	then := p.stmt()
	n := ast.New(ast.If, tok)
	n.Append(cond)
	n.Append(then)
	if p.consume("else") {
		n.Append(p.stmt())
	}
	return n
}

func (p *Parser) whileStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip("(")
	cond := ast.MakePredicate(p.expr())
	p.skip(")")

	label := p.uniqueName("__L_while_")
	p.breakLabels = append(p.breakLabels, label+"_end")
	p.continueLabels = append(p.continueLabels, label+"_cont")
	body := p.stmt()
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]
	p.continueLabels = p.continueLabels[:len(p.continueLabels)-1]

	n := ast.New(ast.While, tok)
	n.Label = label
	n.Append(cond)
	n.Append(body)
	return n
}

func (p *Parser) doStmt() *ast.Node {
	tok := p.lex.Take()
	label := p.uniqueName("__L_do_")
	p.breakLabels = append(p.breakLabels, label+"_end")
	p.continueLabels = append(p.continueLabels, label+"_cont")
	body := p.stmt()
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]
	p.continueLabels = p.continueLabels[:len(p.continueLabels)-1]

	p.skip("while")
	p.skip("(")
	cond := ast.MakePredicate(p.expr())
	p.skip(")")
	p.skip(";")

	n := ast.New(ast.Do, tok)
	n.Label = label
	n.Append(body)
	n.Append(cond)
	return n
}

func (p *Parser) forStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip("(")
	p.enterScope()

	n := ast.New(ast.For, tok)
	label := p.uniqueName("__L_for_")
	n.Label = label

	var init, cond, post *ast.Node
	if p.isTypename() {
		init = p.localDeclaration()
	} else if !p.lex.Is(";") {
		init = p.exprStmtNode()
		p.skip(";")
	} else {
		p.skip(";")
	}
	if !p.lex.Is(";") {
		cond = ast.MakePredicate(p.expr())
	}
	p.skip(";")
	if !p.lex.Is(")") {
		post = p.expr()
	}
	p.skip(")")

	p.breakLabels = append(p.breakLabels, label+"_end")
	p.continueLabels = append(p.continueLabels, label+"_cont")
	body := p.stmt()
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]
	p.continueLabels = p.continueLabels[:len(p.continueLabels)-1]
	p.leaveScope()

	n.Append(emptyIfNil(init, tok))
	n.Append(emptyIfNil(cond, tok))
	n.Append(emptyIfNil(post, tok))
	n.Append(body)
	return n
}

func emptyIfNil(n *ast.Node, tok *lexer.Token) *ast.Node {
	if n != nil {
		return n
	}
	e := ast.New(ast.Block, tok)
	e.Type = sym.TyVoid
	return e
}

func (p *Parser) switchStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip("(")
	cond := ast.PromoteInt(p.expr())
	p.skip(")")

	label := p.uniqueName("__L_switch_")
	p.breakLabels = append(p.breakLabels, label+"_end")
	p.switchCases = append(p.switchCases, nil)
	p.switchDefault = append(p.switchDefault, nil)

	body := p.stmt()

	p.switchCases = p.switchCases[:len(p.switchCases)-1]
	p.switchDefault = p.switchDefault[:len(p.switchDefault)-1]
	p.breakLabels = p.breakLabels[:len(p.breakLabels)-1]

	n := ast.New(ast.Switch, tok)
	n.Label = label
	n.Append(cond)
	n.Append(body)
	return n
}

func (p *Parser) caseStmt() *ast.Node {
	tok := p.lex.Take()
	val := p.constExpr()
	p.skip(":")
	n := ast.New(ast.Case, tok)
	n.IntValue = val
	n.Append(p.stmt())
	if len(p.switchCases) > 0 {
		top := len(p.switchCases) - 1
		p.switchCases[top] = append(p.switchCases[top], n)
	} else {
		p.fatalf(tok, "case label outside a switch")
	}
	return n
}

func (p *Parser) defaultStmt() *ast.Node {
	tok := p.lex.Take()
	p.skip(":")
	n := ast.New(ast.Default, tok)
	n.Append(p.stmt())
	if len(p.switchCases) > 0 {
		top := len(p.switchCases) - 1
		p.switchCases[top] = append(p.switchCases[top], n)
	} else {
		p.fatalf(tok, "default label outside a switch")
	}
	return n
}

// compoundStmt parses a brace-enclosed block, pushing a new scope (spec
// 4.5).
func (p *Parser) compoundStmt() *ast.Node {
	tok := p.skip("{")
	p.enterScope()
	n := ast.New(ast.Block, tok)
	n.Type = sym.TyVoid
	for !p.lex.Is("}") {
		if p.consume("_Static_assert") || p.consume("static_assert") {
			p.staticAssertion()
			continue
		}
		n.Append(p.stmt())
	}
	p.skip("}")
	p.leaveScope()
	return n
}

// exprStmt parses `expr ;` or a bare `;`.
func (p *Parser) exprStmt() *ast.Node {
	if p.lex.Is(";") {
		tok := p.lex.Take()
		n := ast.New(ast.Block, tok)
		n.Type = sym.TyVoid
		return n
	}
	n := p.exprStmtNode()
	p.skip(";")
	return n
}

func (p *Parser) exprStmtNode() *ast.Node {
	tok := p.cur()
	e := p.expr()
	n := ast.New(ast.ExprStmt, tok)
	n.Type = e.Type
	n.Append(e)
	return n
}

// localDeclaration parses one block-scope declaration: declaration
// specifiers followed by comma-separated declarators, each optionally
// initialised (spec 4.5).
func (p *Parser) localDeclaration() *ast.Node {
	tok := p.cur()
	spec, attr := p.declSpec(nil)
	n := ast.New(ast.Block, tok)
	n.Type = sym.TyVoid

	if attr.IsTypedef {
		p.parseTypedef(spec)
		return n
	}

	first := true
	for {
		if !first {
			if !p.consume(",") {
				break
			}
		}
		if p.lex.Is(";") {
			break
		}
		first = false

		t, dtok := p.declarator(spec)
		if dtok == nil {
			p.fatalf(p.cur(), "expected a declarator name")
		}
		s := sym.NewVariable(dtok.Text, t, dtok)
		s.IsDefined = true
		if attr.IsStatic {
			s.Linkage = sym.Internal
			s.AsmName = p.uniqueName("__L_" + dtok.Text.String() + "_")
		}
		if asmName, ok := p.asmLabel(); ok {
			s.AsmName = asmName
		}
		if !p.scope.AddSymbol(dtok.Text.String(), s) {
			p.fatalf(dtok, "'%s' redeclared in this block", dtok.Text.String())
		}

		declNode := ast.New(ast.Decl, dtok)
		declNode.Sym = s
		declNode.Type = t
		if p.consume("=") {
			if p.lex.Is("{") {
				declNode.Append(p.initList(t))
			} else {
				init := p.assign()
				declNode.Append(ast.MakeCast(init, t))
			}
		}
		n.Append(declNode)
	}
	p.skip(";")
	return n
}

// initList parses a brace-enclosed initializer list, supporting nested
// aggregate initializers and designated initializers for the common
// `.field = value` / `[index] = value` forms (supplemented from
// original_source per SPEC_FULL.md 4.5; codegen only actually lowers the
// struct and array cases, matching spec's "large assign" decision).
func (p *Parser) initList(ty *sym.Type) *ast.Node {
	tok := p.skip("{")
	n := ast.New(ast.InitList, tok)
	n.Type = ty
	idx := int64(0)
	for !p.lex.Is("}") {
		if idx > 0 {
			if !p.consume(",") {
				break
			}
			if p.lex.Is("}") {
				break
			}
		}

		var elemType *sym.Type
		if ty.Base == sym.RecordBase {
			if p.consume(".") {
				nameTok := p.cur()
				p.lex.Take()
				p.skip("=")
				mtype, offset, ok := ty.Rec.Find(nameTok.Text.String())
				if !ok {
					p.fatalf(nameTok, "no member named %q", nameTok.Text.String())
				}
				elemType = mtype
				elem := p.initListElement(elemType)
				elem.MemberName = nameTok.Text
				elem.MemberOffset = offset
				n.Append(elem)
				idx++
				continue
			}
			if int(idx) < len(ty.Rec.Members) {
				elemType = ty.Rec.Members[idx].Type
			}
		} else if ty.IsArray() {
			if p.consume("[") {
				i := p.constExpr()
				p.skip("]")
				p.skip("=")
				elemType = ty.Of
				elem := p.initListElement(elemType)
				elem.IntValue = i
				n.Append(elem)
				idx = i + 1
				continue
			}
			elemType = ty.Of
		} else {
			elemType = ty
		}

		elem := p.initListElement(elemType)
		elem.IntValue = idx
		n.Append(elem)
		idx++
	}
	p.skip("}")
	return n
}

func (p *Parser) initListElement(elemType *sym.Type) *ast.Node {
	if p.lex.Is("{") {
		return p.initList(elemType)
	}
	e := p.assign()
	return ast.MakeCast(e, elemType)
}
