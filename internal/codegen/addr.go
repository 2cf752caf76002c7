package codegen

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/sym"
	"github.com/vmcc-project/vmcc/internal/vm"
)

// genAddr computes n's address into ra (spec 4.7 "compute base address").
// n must denote an lvalue: Var, Deref (which is also what the parser
// lowers a subscript a[i] to, as *(a+i)), Member/MemberPtr, or a
// statement expression.
func (g *Gen) genAddr(n *ast.Node) {
	switch n.Kind {
	case ast.Var:
		g.genVarAddr(n.Sym)
	case ast.Deref:
		g.genInto(n.FirstChild, addrReg)
	case ast.Member:
		g.genAddr(n.FirstChild)
		if n.MemberOffset != 0 {
			g.emitI(vm.I(vm.ADD, vm.RegOp(addrReg), vm.RegOp(addrReg), vm.ImmOp(n.MemberOffset)))
		}
	case ast.MemberPtr:
		g.genInto(n.FirstChild, addrReg)
		if n.MemberOffset != 0 {
			g.emitI(vm.I(vm.ADD, vm.RegOp(addrReg), vm.RegOp(addrReg), vm.ImmOp(n.MemberOffset)))
		}
	case ast.StmtExpr:
		g.genStmtExprAddr(n)
	default:
		g.fatalUnimplemented(n, "taking the address of this expression")
	}
}

// genVarAddr computes the address of a variable symbol: rfp-relative for
// locals/parameters, rpp-relative for globals and static locals (spec 4.7
// "Local variables are addressed as negative offsets from rfp").
func (g *Gen) genVarAddr(s *sym.Symbol) {
	if off, ok := g.locals[s]; ok {
		g.emitI(vm.I(vm.ADD, vm.RegOp(addrReg), vm.RegOp(vm.RFP), vm.ImmOp(off)))
		return
	}
	g.emitI(vm.I(vm.MOV, vm.RegOp(addrReg), vm.SymAddrOp(s.AsmName)))
}

// genStmtExprAddr handles `&({ ... })` by generating the statement
// expression's value into a scratch local and returning its address --
// an edge case beyond the common path but cheap to keep consistent.
func (g *Gen) genStmtExprAddr(n *ast.Node) {
	g.genInto(n, result)
	g.emitI(vm.I(vm.PUSH, vm.RegOp(result)))
	g.emitI(vm.I(vm.POP, vm.RegOp(addrReg)))
}
