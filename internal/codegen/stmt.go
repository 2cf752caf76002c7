package codegen

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/sym"
	"github.com/vmcc-project/vmcc/internal/vm"
)

// genStmt lowers one statement (spec 4.7 "Statements emit into the
// current block"). Every loop/switch already carries its own synthesised
// label on the AST node (spec 4.5's parser threads break/continue labels
// through a stack at parse time), so control flow here never needs its
// own label stack.
func (g *Gen) genStmt(n *ast.Node) {
	if n.Kind != ast.Block {
		g.emitLine(n.Tok)
	}
	switch n.Kind {
	case ast.Block:
		for c := n.FirstChild; c != nil; c = c.Next {
			g.genStmt(c)
		}
	case ast.ExprStmt:
		g.genStmtValue(n.FirstChild)
	case ast.Decl:
		g.genDecl(n)
	case ast.If:
		g.genIf(n)
	case ast.While:
		g.genWhile(n)
	case ast.Do:
		g.genDo(n)
	case ast.For:
		g.genFor(n)
	case ast.Switch:
		g.genSwitch(n)
	case ast.Case:
		if label, ok := g.caseLabels[n]; ok {
			g.emitLabel(label)
		}
		g.genStmt(n.FirstChild)
	case ast.Default:
		if label, ok := g.caseLabels[n]; ok {
			g.emitLabel(label)
		}
		g.genStmt(n.FirstChild)
	case ast.Break, ast.Continue, ast.Goto:
		g.emitI(vm.I(vm.JMP, vm.LabelOp(n.Label)))
	case ast.Label:
		g.emitLabel(n.Label)
		g.genStmt(n.FirstChild)
	case ast.Return:
		g.genReturn(n)
	default:
		g.fatalUnimplemented(n, "statement kind")
	}
}

// isEmptyClause reports whether a for-loop clause is the empty
// placeholder emptyIfNil substitutes for an omitted init/cond/post.
func isEmptyClause(n *ast.Node) bool {
	return n.Kind == ast.Block && n.FirstChild == nil
}

// genIf lowers `if`/`if-else` with a pair of synthesised labels (spec 4.7
// "if/while/for/do use pairs of synthesised labels").
func (g *Gen) genIf(n *ast.Node) {
	cond, then := n.FirstChild, n.FirstChild.Next
	els := then.Next

	elseLabel := g.newLabel("if_else")
	g.genInto(cond, result)
	g.emitI(vm.I(vm.JZ, vm.RegOp(result), vm.LabelOp(elseLabel)))
	g.genStmt(then)
	if els == nil {
		g.emitLabel(elseLabel)
		return
	}
	endLabel := g.newLabel("if_end")
	g.emitI(vm.I(vm.JMP, vm.LabelOp(endLabel)))
	g.emitLabel(elseLabel)
	g.genStmt(els)
	g.emitLabel(endLabel)
}

// genWhile lowers `while (cond) body`; continue re-checks the condition,
// matching C's "continue skips the rest of the body, not the condition".
func (g *Gen) genWhile(n *ast.Node) {
	cond, body := n.FirstChild, n.FirstChild.Next
	contLabel := n.Label + "_cont"
	endLabel := n.Label + "_end"

	g.emitLabel(contLabel)
	g.genInto(cond, result)
	g.emitI(vm.I(vm.JZ, vm.RegOp(result), vm.LabelOp(endLabel)))
	g.genStmt(body)
	g.emitI(vm.I(vm.JMP, vm.LabelOp(contLabel)))
	g.emitLabel(endLabel)
}

// genDo lowers `do body while (cond);`; continue jumps past the rest of
// the body straight to the condition check, which loops back to the top
// on success.
func (g *Gen) genDo(n *ast.Node) {
	body, cond := n.FirstChild, n.FirstChild.Next
	topLabel := n.Label + "_top"
	contLabel := n.Label + "_cont"
	endLabel := n.Label + "_end"

	g.emitLabel(topLabel)
	g.genStmt(body)
	g.emitLabel(contLabel)
	g.genInto(cond, result)
	g.emitI(vm.I(vm.JNZ, vm.RegOp(result), vm.LabelOp(topLabel)))
	g.emitLabel(endLabel)
}

// genFor lowers `for (init; cond; post) body`; continue runs the post
// expression before looping back to the condition check (spec 4.6 "For
// node children order: init, cond, post, body", emptyIfNil substitutes
// an empty Block for any omitted clause).
func (g *Gen) genFor(n *ast.Node) {
	init := n.FirstChild
	cond := init.Next
	post := cond.Next
	body := post.Next

	topLabel := n.Label + "_top"
	contLabel := n.Label + "_cont"
	endLabel := n.Label + "_end"

	g.genStmt(init)
	g.emitLabel(topLabel)
	if !isEmptyClause(cond) {
		g.genInto(cond, result)
		g.emitI(vm.I(vm.JZ, vm.RegOp(result), vm.LabelOp(endLabel)))
	}
	g.genStmt(body)
	g.emitLabel(contLabel)
	if !isEmptyClause(post) {
		g.genStmtValue(post)
	}
	g.emitI(vm.I(vm.JMP, vm.LabelOp(topLabel)))
	g.emitLabel(endLabel)
}

// genSwitch lowers `switch` to a chain of compare-and-branch followed by
// a default/fall-through label (spec 4.7). The Switch node's only
// children are cond and body; each Case/Default node sits at its natural
// position inside body's statement tree (spec 4.6), so the dispatch
// labels are discovered by a walk of body that stops at nested switches.
func (g *Gen) genSwitch(n *ast.Node) {
	cond, body := n.FirstChild, n.FirstChild.Next
	endLabel := n.Label + "_end"

	var cases []*ast.Node
	var def *ast.Node
	var walk func(b *ast.Node)
	walk = func(b *ast.Node) {
		if b == nil || b.Kind == ast.Switch {
			return
		}
		switch b.Kind {
		case ast.Case:
			cases = append(cases, b)
		case ast.Default:
			def = b
		}
		for c := b.FirstChild; c != nil; c = c.Next {
			walk(c)
		}
	}
	walk(body)

	for _, c := range cases {
		g.caseLabels[c] = g.newLabel("case")
	}
	if def != nil {
		g.caseLabels[def] = g.newLabel("default")
	}

	g.genInto(cond, result)
	for _, c := range cases {
		g.loadImmediate(scratchReg, c.IntValue, cond.Type)
		g.emitI(vm.I(vm.SUB, vm.RegOp(vm.RB), vm.RegOp(result), vm.RegOp(scratchReg)))
		g.emitI(vm.I(vm.JZ, vm.RegOp(vm.RB), vm.LabelOp(g.caseLabels[c])))
	}
	if def != nil {
		g.emitI(vm.I(vm.JMP, vm.LabelOp(g.caseLabels[def])))
	} else {
		g.emitI(vm.I(vm.JMP, vm.LabelOp(endLabel)))
	}

	g.genStmt(body)
	g.emitLabel(endLabel)
}

// genReturn lowers `return [expr];`. There's no shared epilogue label to
// jump to, so each return statement emits its own leave/ret, exactly
// like the implicit fall-off-the-end return GenerateFunction appends.
func (g *Gen) genReturn(n *ast.Node) {
	expr := n.FirstChild
	if expr == nil {
		g.emitI(vm.I(vm.LEAVE))
		g.emitI(vm.I(vm.RET))
		return
	}
	if isIndirectReturn(g.retType) {
		g.genInto(expr, result)
		g.emitI(vm.I(vm.LDW, vm.RegOp(vm.RB), vm.RegOp(vm.RFP), vm.ImmOp(g.retPtrOff)))
		g.copyMem(vm.RB, 0, result, 0, g.retType.Size())
		g.emitI(vm.I(vm.MOV, vm.RegOp(result), vm.RegOp(vm.RB)))
		g.emitI(vm.I(vm.LEAVE))
		g.emitI(vm.I(vm.RET))
		return
	}
	g.genInto(expr, result)
	g.emitI(vm.I(vm.LEAVE))
	g.emitI(vm.I(vm.RET))
}

// genDecl lowers a local declaration's initializer, if it has one (spec
// 4.7; the frame slot itself was already reserved by collectLocals). An
// aggregate initializer list is zero-filled first so omitted trailing
// members/elements read as zero, then the explicitly given elements are
// written over that, matching ordinary C aggregate-initialization rules.
func (g *Gen) genDecl(n *ast.Node) {
	s := n.Sym
	init := n.FirstChild
	if init == nil {
		return
	}
	off := g.locals[s]

	if init.Kind == ast.InitList {
		if s.Type.Base == sym.RecordBase || s.Type.IsArray() {
			g.zeroFill(vm.RFP, off, s.Type.Size())
		}
		g.genInitListInto(vm.RFP, off, s.Type, init)
		return
	}

	lhs := ast.New(ast.Var, n.Tok)
	lhs.Sym = s
	lhs.Type = s.Type
	assign := ast.New(ast.Assign, n.Tok)
	assign.Type = s.Type
	assign.Append(lhs)
	assign.Append(init)
	g.genAssign(assign, result)
}

// genInitListInto recursively lowers one (possibly nested) aggregate
// initializer list into base+baseOff. Each element's target offset comes
// from the designator the parser already resolved (MemberName/
// MemberOffset for `.field = `), or else from its positional index
// (IntValue) against the aggregate's own layout (spec 4.5 initList).
func (g *Gen) genInitListInto(base vm.Reg, baseOff int64, ty *sym.Type, n *ast.Node) {
	for c := n.FirstChild; c != nil; c = c.Next {
		var off int64
		switch {
		case c.MemberName != nil:
			off = c.MemberOffset
		case ty.Base == sym.RecordBase:
			off = ty.Rec.Members[c.IntValue].Offset
		case ty.IsArray():
			off = c.IntValue * ty.Of.Size()
		}
		if c.Kind == ast.InitList {
			g.genInitListInto(base, baseOff+off, c.Type, c)
			continue
		}
		g.genScalarInitInto(base, baseOff+off, c.Type, c)
	}
}

// genScalarInitInto stores one non-aggregate initializer element. An
// addressed (struct/wide-scalar) element's genInto result is an address,
// so it's copied byte-by-byte rather than stored as a single word.
func (g *Gen) genScalarInitInto(base vm.Reg, off int64, ty *sym.Type, expr *ast.Node) {
	g.genInto(expr, result)
	if isAddressed(ty) {
		g.copyMem(base, off, result, 0, ty.Size())
		return
	}
	g.emitI(vm.I(storeOpFor(ty), vm.RegOp(base), vm.ImmOp(off), vm.RegOp(result)))
}

// zeroFill writes size zero bytes starting at base+off, in word/halfword/
// byte chunks sized to what's left.
func (g *Gen) zeroFill(base vm.Reg, off int64, size int64) {
	i := int64(0)
	for ; size-i >= 4; i += 4 {
		g.loadImmediate(scratchReg, 0, sym.TyInt)
		g.emitI(vm.I(vm.STW, vm.RegOp(base), vm.ImmOp(off+i), vm.RegOp(scratchReg)))
	}
	if size-i >= 2 {
		g.loadImmediate(scratchReg, 0, sym.TyInt)
		g.emitI(vm.I(vm.STS, vm.RegOp(base), vm.ImmOp(off+i), vm.RegOp(scratchReg)))
		i += 2
	}
	if size-i >= 1 {
		g.loadImmediate(scratchReg, 0, sym.TyInt)
		g.emitI(vm.I(vm.STB, vm.RegOp(base), vm.ImmOp(off+i), vm.RegOp(scratchReg)))
	}
}
