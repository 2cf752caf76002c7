// Package codegen lowers the typed AST to the virtual-machine instruction
// stream the emitter serialises (spec 4.7). Each expression node emits
// code that leaves its value in a caller-specified register; the
// generator funnels every intermediate value through r0 and spills to the
// real machine stack (push/pop) around sub-expression evaluation, so
// arbitrarily nested expressions never clobber a live value regardless of
// how deep the recursion goes.
package codegen

import (
	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/emit"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
	"github.com/vmcc-project/vmcc/internal/vm"
)

// result is the register every genInto call leaves its value in.
const result = vm.R0

// addrReg holds a freshly computed lvalue address (spec 4.7 "compute base
// address").
const addrReg = vm.RA

// scratchReg holds the other operand of a binary op once popped back off
// the stack.
const scratchReg = vm.R1

// Gen lowers one translation unit's parsed globals and function
// definitions to an emit.Program.
type Gen struct {
	prog *emit.Program

	cur      *emit.Global
	locals   map[*sym.Symbol]int64 // negative byte offset from rfp
	frameTop int64                 // next free offset below rfp (grows negative)

	labelSeq int

	// caseLabels maps each Case/Default node reached inside the function
	// currently being generated to the label genSwitch mints for it. The
	// parser leaves each Case/Default node in place inside the switch
	// body's statement tree (spec 4.6), so a case's
	// dispatch label can't be recovered from the AST shape alone at the
	// point the case's own body is emitted in sequence -- it has to be
	// precomputed by genSwitch's own walk and looked up here.
	caseLabels map[*ast.Node]string

	// retType is the function currently being generated's return type;
	// retPtrOff is where its incoming r1 (spec 4.7 "64-bit/float results
	// via ... pointer in r1") gets spilled, so expression codegen can
	// keep reusing r1 as an ordinary scratch register without losing it.
	retType   *sym.Type
	retPtrOff int64

	// vaArgOff is where the first unnamed argument of the function
	// currently being generated lands, if it is variadic (spec 4.5
	// "va_start"): every argument of a variadic call is spilled to the
	// stack in uniform 4-byte slots (genCall), so this is simply 8 plus
	// 4 times the declared parameter count, independent of any
	// individual parameter's own size or storage.
	vaArgOff int64

	funcLabel  string
	curFile    string
	curLine    int
}

// New creates a code generator that will append to prog.
func New() *Gen {
	return &Gen{prog: &emit.Program{}}
}

// Program returns the assembled program after Generate has been called for
// every global and function.
func (g *Gen) Program() *emit.Program { return g.prog }

// GenerateGlobal emits a variable's global data (spec 4.7 "emitted with
// the other globals"; spec 4.8 globals sigils). An uninitialised global is
// emitted as N zero bytes (teacher's .bss-equivalent).
func (g *Gen) GenerateGlobal(s *sym.Symbol, init *ast.Node) {
	global := emit.Global{Name: s.AsmName, Public: s.Linkage == sym.External}
	if init != nil {
		global.Items = append(global.Items, g.globalInitItems(s.Type, init)...)
	} else {
		global.Items = append(global.Items, emit.ZeroItem(s.Type.Size()))
	}
	g.prog.Globals = append(g.prog.Globals, global)
}

func (g *Gen) globalInitItems(ty *sym.Type, n *ast.Node) []emit.Item {
	switch n.Kind {
	case ast.StrLit:
		return []emit.Item{emit.DataItem(n.Bytes)}
	case ast.InitList:
		var items []emit.Item
		for c := n.FirstChild; c != nil; c = c.Next {
			items = append(items, g.globalInitItems(c.Type, c)...)
		}
		return items
	}
	if ty.IsFloating() {
		return []emit.Item{emit.DataItem(intBytes(floatBits(constFloat(n), ty), ty.Size()))}
	}
	if v, ok := constInt(n); ok {
		return []emit.Item{emit.DataItem(intBytes(v, ty.Size()))}
	}
	g.fatalUnimplemented(n, "this global initializer expression")
	return []emit.Item{emit.ZeroItem(ty.Size())}
}

// constInt evaluates a global initializer's integer constant expression
// (spec 3 "a file-scope variable's initialiser must be a constant
// expression"); the grammar subset global initializers actually use is
// literals, casts, unary +/-/~/!, and the ordinary binary operators.
func constInt(n *ast.Node) (int64, bool) {
	switch n.Kind {
	case ast.Num, ast.CharLit:
		return n.IntValue, true
	case ast.FloatLit:
		return int64(n.FloatValue), true
	case ast.Cast:
		return constInt(n.FirstChild)
	case ast.Neg:
		v, ok := constInt(n.FirstChild)
		return -v, ok
	case ast.BitNot:
		v, ok := constInt(n.FirstChild)
		return ^v, ok
	case ast.Not:
		v, ok := constInt(n.FirstChild)
		if v == 0 {
			return 1, ok
		}
		return 0, ok
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod, ast.Shl, ast.Shr, ast.BitAnd, ast.BitOr, ast.BitXor:
		a, ok1 := constInt(n.FirstChild)
		b, ok2 := constInt(n.FirstChild.Next)
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
		}
	}
	return 0, false
}

// constFloat evaluates a global initializer's floating constant
// expression, falling back through the same integer literal it might
// instead be (e.g. `double d = 1;`).
func constFloat(n *ast.Node) float64 {
	switch n.Kind {
	case ast.FloatLit:
		return n.FloatValue
	case ast.Cast:
		return constFloat(n.FirstChild)
	case ast.Neg:
		return -constFloat(n.FirstChild)
	case ast.Num, ast.CharLit:
		return float64(n.IntValue)
	}
	if v, ok := constInt(n); ok {
		return float64(v)
	}
	return 0
}

func intBytes(v int64, size int64) []byte {
	out := make([]byte, size)
	for i := int64(0); i < size; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// GenerateFunction lowers one function definition (spec 4.7 calling
// convention and frame layout).
func (g *Gen) GenerateFunction(def *ast.Node) {
	fn := def.Sym
	g.cur = &emit.Global{Name: fn.AsmName, Public: fn.Linkage == sym.External}
	g.locals = make(map[*sym.Symbol]int64)
	g.frameTop = 0
	g.caseLabels = make(map[*ast.Node]string)
	g.funcLabel = fn.AsmName
	g.retType = fn.Type.Of
	g.curFile = ""
	g.curLine = 0

	body := def.FirstChild
	g.collectLocals(body)
	g.allocParamSlots(fn.Type, def.Params)
	g.vaArgOff = int64(8 + 4*len(fn.Type.Params))
	if isIndirectReturn(g.retType) {
		g.retPtrOff = g.allocLocal(sym.TyLong)
	}

	// Scratch slots are still being allocated while the body is generated,
	// so ENTER is emitted with a placeholder size here and patched once the
	// body is done and every frame slot is known.
	enterAt := len(g.cur.Items)
	g.emitI(vm.I(vm.ENTER, g.frameImm(0)))
	if isIndirectReturn(g.retType) {
		g.emitI(vm.I(vm.STW, vm.RegOp(vm.RFP), vm.ImmOp(g.retPtrOff), vm.RegOp(vm.R1)))
	}
	g.emitParamStores(fn.Type, def.Params)
	g.genStmt(body)
	g.emitI(vm.I(vm.LEAVE))
	g.emitI(vm.I(vm.RET))
	g.cur.Items[enterAt] = emit.InstrItem(vm.I(vm.ENTER, g.frameImm(alignUp(-g.frameTop, 8))))

	g.prog.Globals = append(g.prog.Globals, *g.cur)
	g.cur = nil
}

// frameImm returns an operand for the frame size, exactly matching spec
// 4.7's note that the frame allocation may need a temporary register "if
// the frame exceeds the mix-type byte range +-127"; ENTER takes the size
// as an immediate and the assembler/VM is responsible for widening it, so
// this only has to pick decimal vs. the emitter's automatic hex fallback.
func (g *Gen) frameImm(size int64) vm.Operand {
	return vm.ImmOp(size)
}

// paramRegCount returns how many of fn's leading parameters a caller
// passes by register rather than the stack: zero for a variadic
// function, since a variadic callee must find every argument (named or
// not) at a uniform stack offset for va_start/va_arg to walk (genCall
// mirrors this exactly so caller and callee always agree).
func paramRegCount(ty *sym.Type, indirectReturn bool) int {
	if ty.Variadic {
		return 0
	}
	return callRegCount(indirectReturn)
}

// allocParamSlots reserves frame slots for every parameter, without
// emitting anything -- GenerateFunction needs every slot nailed down
// before the frame size is known. A register-passed parameter gets a
// real local slot sized to its own type; a stack-spilled one occupies a
// single word at a positive rfp offset, except an addressed (struct or
// wide-scalar) one, which the caller passed as a pointer and so still
// needs its own real, correctly sized local slot to be copied into
// (spec 4.7 "spilled incoming args at positive offsets").
func (g *Gen) allocParamSlots(ty *sym.Type, params []*sym.Symbol) {
	regCount := paramRegCount(ty, isIndirectReturn(g.retType))
	spillOff := int64(8)
	for i, pt := range ty.Params {
		var name *sym.Symbol
		if i < len(params) {
			name = params[i]
		}
		if i < regCount {
			if name != nil {
				g.locals[name] = g.allocLocal(pt)
			}
			continue
		}
		if name != nil {
			if isAddressed(pt) {
				g.locals[name] = g.allocLocal(pt)
			} else {
				g.locals[name] = spillOff
			}
		}
		spillOff += 4
	}
}

// emitParamStores spills each register-passed parameter out of its
// argument register into the slot allocParamSlots reserved for it, and
// copies each addressed stack-spilled parameter's bytes in from the
// pointer the caller left on the stack (genCall's mirrored layout).
func (g *Gen) emitParamStores(ty *sym.Type, params []*sym.Symbol) {
	indirectReturn := isIndirectReturn(g.retType)
	regCount := paramRegCount(ty, indirectReturn)
	spillOff := int64(8)
	for i, pt := range ty.Params {
		var name *sym.Symbol
		if i < len(params) {
			name = params[i]
		}
		if i < regCount {
			if name != nil {
				reg := callRegSlot(i, indirectReturn)
				off := g.locals[name]
				if isAddressed(pt) {
					g.copyMem(vm.RFP, off, reg, 0, pt.Size())
				} else {
					g.emitI(vm.I(storeOpFor(pt), vm.RegOp(vm.RFP), vm.ImmOp(off), vm.RegOp(reg)))
				}
			}
			continue
		}
		if name != nil && isAddressed(pt) {
			g.emitI(vm.I(vm.LDW, vm.RegOp(scratchReg), vm.RegOp(vm.RFP), vm.ImmOp(spillOff)))
			g.copyMem(vm.RFP, g.locals[name], scratchReg, 0, pt.Size())
		}
		spillOff += 4
	}
}

// collectLocals walks a function body pre-assigning every Decl node's
// symbol a frame slot, matching spec 4.7 "Local variables are addressed as
// negative offsets from rfp".
func (g *Gen) collectLocals(n *ast.Node) {
	if n == nil {
		return
	}
	if n.Kind == ast.Decl && n.Sym != nil {
		if _, ok := g.locals[n.Sym]; !ok {
			off := g.allocLocal(n.Sym.Type)
			g.locals[n.Sym] = off
		}
	}
	for c := n.FirstChild; c != nil; c = c.Next {
		g.collectLocals(c)
	}
}

// allocLocal reserves size(t) bytes (aligned) below rfp and returns the
// new variable's (negative) offset.
func (g *Gen) allocLocal(t *sym.Type) int64 {
	size := t.Size()
	align := t.Alignment()
	g.frameTop = alignDown(g.frameTop-size, align)
	return g.frameTop
}

func alignUp(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) / align * align
}

func alignDown(n, align int64) int64 {
	if align <= 0 {
		return n
	}
	if n < 0 {
		return -alignUp(-n, align)
	}
	return n / align * align
}

func (g *Gen) emitI(i vm.Instr) {
	g.cur.Items = append(g.cur.Items, emit.InstrItem(i))
}

func (g *Gen) emitLabel(name string) {
	g.cur.Items = append(g.cur.Items, emit.LabelItem(name))
}

// emitLine records tok's source position as a debug-info marker, using
// the cheap lone "#" increment (emit.LineIncItem) for the common case of
// the next line in the same file and falling back to a full #line
// directive (emit.LineItem) whenever the file changes or a line is
// skipped, matching spec.md's debug-info contract. A no-op if tok is nil
// or its position hasn't moved since the last marker.
func (g *Gen) emitLine(tok *lexer.Token) {
	if tok == nil {
		return
	}
	file := tok.File.String()
	line := tok.Line
	if file == g.curFile && line == g.curLine {
		return
	}
	if file == g.curFile && line == g.curLine+1 {
		g.cur.Items = append(g.cur.Items, emit.LineIncItem())
	} else {
		g.cur.Items = append(g.cur.Items, emit.LineItem(file, line))
	}
	g.curFile = file
	g.curLine = line
}

// newLabel mints a fresh intra-function label name, unique within the
// whole translation unit so nested functions never collide (spec 4.7
// "synthesised labels").
func (g *Gen) newLabel(prefix string) string {
	g.labelSeq++
	return g.funcLabel + "_" + prefix + "_" + itoa(g.labelSeq)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// storeOpFor picks stb/sts/stw by the type's size (spec 4.7 "store by
// type size").
func storeOpFor(t *sym.Type) vm.Op {
	switch t.Size() {
	case 1:
		return vm.STB
	case 2:
		return vm.STS
	default:
		return vm.STW
	}
}

// loadOpFor picks ldb/ldh/ldw by the type's size.
func loadOpFor(t *sym.Type) vm.Op {
	switch t.Size() {
	case 1:
		return vm.LDB
	case 2:
		return vm.LDH
	default:
		return vm.LDW
	}
}

func (g *Gen) fatalUnimplemented(n *ast.Node, what string) {
	pos := diag.Position{}
	if n != nil && n.Tok != nil {
		pos.Line = n.Tok.Line
	}
	diag.Fatal(diag.Unimplemented, pos, "%s is not supported by the code generator", what)
}
