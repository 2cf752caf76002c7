package codegen

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/emit"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/parser"
	"github.com/vmcc-project/vmcc/internal/sym"
)

func TestAlignUpAndDown(t *testing.T) {
	if got := alignUp(5, 8); got != 8 {
		t.Fatalf("alignUp(5, 8) = %d, want 8", got)
	}
	if got := alignUp(8, 8); got != 8 {
		t.Fatalf("alignUp(8, 8) = %d, want 8 (no-op on an already-aligned value)", got)
	}
	if got := alignDown(-5, 8); got != -8 {
		t.Fatalf("alignDown(-5, 8) = %d, want -8", got)
	}
	if got := alignDown(-8, 8); got != -8 {
		t.Fatalf("alignDown(-8, 8) = %d, want -8", got)
	}
}

func TestIsWideAndIsAddressed(t *testing.T) {
	if isWide(sym.TyInt) {
		t.Fatalf("int should not be wide")
	}
	if !isWide(sym.TyLLong) {
		t.Fatalf("long long should be wide")
	}
	if !isWide(sym.TyDouble) {
		t.Fatalf("double should be wide")
	}
	if isAddressed(sym.TyInt) {
		t.Fatalf("int should not be addressed")
	}
	if !isAddressed(sym.TyLLong) {
		t.Fatalf("long long should be addressed (it's wide)")
	}
	if isAddressed(nil) {
		t.Fatalf("a nil type should not be addressed")
	}
}

func TestCallRegCountAndSlotSkipsR1ForIndirectReturn(t *testing.T) {
	if got := callRegCount(false); got != 4 {
		t.Fatalf("callRegCount(false) = %d, want 4", got)
	}
	if got := callRegCount(true); got != 3 {
		t.Fatalf("callRegCount(true) = %d, want 3", got)
	}
	if got := callRegSlot(0, true); got != 0 {
		t.Fatalf("callRegSlot(0, true) = %v, want r0", got)
	}
	if got := callRegSlot(1, true); got.String() != "r2" {
		t.Fatalf("callRegSlot(1, true) = %v, want r2 (r1 reserved for the return pointer)", got)
	}
	if got := callRegSlot(1, false); got.String() != "r1" {
		t.Fatalf("callRegSlot(1, false) = %v, want r1", got)
	}
}

func TestCompoundOpKindMapsEveryOperator(t *testing.T) {
	cases := map[string]ast.Kind{
		"+=": ast.Add, "-=": ast.Sub, "*=": ast.Mul, "/=": ast.Div, "%=": ast.Mod,
		"&=": ast.BitAnd, "|=": ast.BitOr, "^=": ast.BitXor, "<<=": ast.Shl, ">>=": ast.Shr,
	}
	for op, want := range cases {
		if got := compoundOpKind(op); got != want {
			t.Fatalf("compoundOpKind(%q) = %v, want %v", op, got, want)
		}
	}
}

func TestWideHelperForTable(t *testing.T) {
	if h := wideHelperFor(ast.Add, sym.TyLLong); h == "" {
		t.Fatalf("wideHelperFor(Add, long long) returned no helper")
	}
	if h := wideHelperFor(ast.Add, sym.TyDouble); h == "" {
		t.Fatalf("wideHelperFor(Add, double) returned no helper")
	}
	// Shift has no floating-point helper in the table.
	if h := wideHelperFor(ast.Shl, sym.TyDouble); h != "" {
		t.Fatalf("wideHelperFor(Shl, double) = %q, want \"\" (shift is not defined on floating types)", h)
	}
}

func TestStoreAndLoadOpForPicksBySize(t *testing.T) {
	if got := storeOpFor(sym.TyChar); got.String() != "stb" {
		t.Fatalf("storeOpFor(char) = %v, want stb", got)
	}
	if got := storeOpFor(sym.TyShort); got.String() != "sts" {
		t.Fatalf("storeOpFor(short) = %v, want sts", got)
	}
	if got := storeOpFor(sym.TyInt); got.String() != "stw" {
		t.Fatalf("storeOpFor(int) = %v, want stw", got)
	}
	if got := loadOpFor(sym.TyChar); got.String() != "ldb" {
		t.Fatalf("loadOpFor(char) = %v, want ldb", got)
	}
}

// compileToAsm runs the full lex -> parse -> codegen -> emit pipeline and
// returns the resulting assembly text, matching how cmd/vmcc drives the
// same four packages.
func compileToAsm(t *testing.T, src string) string {
	t.Helper()
	pool := intern.NewPool()
	global := sym.NewScope(nil)
	lex := lexer.New(pool, "t.c", []byte(src))
	p := parser.New(lex, pool, global)
	p.ParseTranslationUnit()

	gen := New()
	for _, s := range p.Globals {
		if s.Kind == sym.FuncSym || !s.IsDefined {
			continue
		}
		gen.GenerateGlobal(s, p.GlobalInits[s])
	}
	for _, fn := range p.Funcs {
		gen.GenerateFunction(fn)
	}

	var buf bytes.Buffer
	if err := emit.Emit(&buf, gen.Program(), false); err != nil {
		t.Fatalf("emit.Emit: %v", err)
	}
	return buf.String()
}

func TestGenerateFunctionEmitsEnterAndLeave(t *testing.T) {
	asm := compileToAsm(t, `int answer(void) { return 42; }`)
	if !strings.Contains(asm, "enter") {
		t.Fatalf("expected an enter instruction, got:\n%s", asm)
	}
	if !strings.Contains(asm, "leave") {
		t.Fatalf("expected a leave instruction, got:\n%s", asm)
	}
	if !strings.Contains(asm, "ret") {
		t.Fatalf("expected a ret instruction, got:\n%s", asm)
	}
}

func TestGenerateFunctionCallUsesDirectSymbolAddress(t *testing.T) {
	asm := compileToAsm(t, `
int add(int a, int b) { return a + b; }
int main(void) { return add(1, 2); }
`)
	if !strings.Contains(asm, "call ^add") {
		t.Fatalf("expected a direct call to ^add, got:\n%s", asm)
	}
}

func TestGenerateFunctionPointerCallIsIndirect(t *testing.T) {
	asm := compileToAsm(t, `
int apply(int (*f)(int), int x) {
	return f(x);
}
`)
	if strings.Contains(asm, "call ^f") {
		t.Fatalf("a call through a function-pointer parameter must not resolve to a direct symbol, got:\n%s", asm)
	}
	if !strings.Contains(asm, "call ra") {
		t.Fatalf("expected an indirect call through ra, got:\n%s", asm)
	}
}

func TestGenerateFunctionIfElseEmitsBothBranchLabels(t *testing.T) {
	asm := compileToAsm(t, `
int pick(int c) {
	if (c) return 1;
	else return 2;
}
`)
	if strings.Count(asm, "jz ") != 1 {
		t.Fatalf("expected exactly one jz, got:\n%s", asm)
	}
	if !strings.Contains(asm, "if_else") || !strings.Contains(asm, "if_end") {
		t.Fatalf("expected both an if_else and if_end label, got:\n%s", asm)
	}
}

func TestGenerateFunctionWhileLoopChecksConditionOnContinue(t *testing.T) {
	asm := compileToAsm(t, `
int count(int n) {
	int i = 0;
	while (i < n) {
		i = i + 1;
	}
	return i;
}
`)
	if !strings.Contains(asm, "_cont") || !strings.Contains(asm, "_end") {
		t.Fatalf("expected continue/end labels for the while loop, got:\n%s", asm)
	}
}

func TestGenerateFunctionSwitchDispatchesOnEveryCase(t *testing.T) {
	asm := compileToAsm(t, `
int classify(int x) {
	switch (x) {
	case 1:
		return 10;
	case 2:
		return 20;
	default:
		return 0;
	}
}
`)
	if strings.Count(asm, "jz ") != 2 {
		t.Fatalf("expected one jz per case (2 cases), got:\n%s", asm)
	}
}

func TestGenerateFunctionVariadicCallSpillsEveryArgument(t *testing.T) {
	asm := compileToAsm(t, `
int sum(int n, ...) {
	__builtin_va_list ap;
	__builtin_va_start(ap, n);
	int total = 0;
	int i = 0;
	while (i < n) {
		total = total + __builtin_va_arg(ap, int);
		i = i + 1;
	}
	__builtin_va_end(ap);
	return total;
}
int main(void) {
	return sum(2, 10, 20);
}
`)
	// Every argument of a variadic call is spilled to the stack, never
	// passed in a register (genCall's calleeIsVariadic branch), so a
	// 3-argument call site pushes 3 times.
	if strings.Count(asm, "push ") < 3 {
		t.Fatalf("expected at least 3 pushes for a 3-argument variadic call, got:\n%s", asm)
	}
}

func TestGenerateFunctionIndirectReturnPassesPointerInR1(t *testing.T) {
	asm := compileToAsm(t, `
struct pair { int a; int b; };
struct pair make(int a, int b) {
	struct pair p;
	p.a = a;
	p.b = b;
	return p;
}
`)
	if !strings.Contains(asm, "r1") {
		t.Fatalf("expected r1 to carry the indirect-return destination pointer, got:\n%s", asm)
	}
}

func TestGenerateGlobalEmitsZeroForUninitialised(t *testing.T) {
	asm := compileToAsm(t, `int counter;`)
	if !strings.Contains(asm, "zero 4") {
		t.Fatalf("expected a tentative definition to emit zero-filled data, got:\n%s", asm)
	}
}

func TestGenerateGlobalEmitsDataForInitialised(t *testing.T) {
	asm := compileToAsm(t, `int counter = 7;`)
	if strings.Contains(asm, "zero 4") {
		t.Fatalf("an initialised global must not fall back to zero-fill, got:\n%s", asm)
	}
}

func TestCompoundLiteralCompilesAndStoresIntoItsField(t *testing.T) {
	asm := compileToAsm(t, `
struct pair { int a; int b; };
int first(void) {
	return (struct pair){1, 2}.a;
}
`)
	if !strings.Contains(asm, "enter") {
		t.Fatalf("expected the anonymous compound-literal object to still frame a function normally, got:\n%s", asm)
	}
}

func TestCompoundLiteralAsAssignmentSource(t *testing.T) {
	asm := compileToAsm(t, `
struct pair { int a; int b; };
int first(void) {
	struct pair p = (struct pair){3, 4};
	return p.a;
}
`)
	if !strings.Contains(asm, "ret") {
		t.Fatalf("expected the function to compile through to a ret, got:\n%s", asm)
	}
}

func TestOldStyleFunctionCallSkipsParameterCasts(t *testing.T) {
	asm := compileToAsm(t, `
int f();
int g(void) {
	return f(1, 2, 3);
}
`)
	if !strings.Contains(asm, "call ^f") {
		t.Fatalf("expected a direct call to ^f, got:\n%s", asm)
	}
}

func TestAsmLabelRenamesEmittedFunctionSymbol(t *testing.T) {
	asm := compileToAsm(t, `
int real_name(void) __asm__("renamed") {
	return 1;
}
`)
	if !strings.Contains(asm, "= renamed") {
		t.Fatalf("expected the asm-renamed label, got:\n%s", asm)
	}
	if strings.Contains(asm, "real_name") {
		t.Fatalf("the original C name must not appear in the emitted label, got:\n%s", asm)
	}
}

func TestDebugLineDirectivesTrackSourceLines(t *testing.T) {
	pool := intern.NewPool()
	global := sym.NewScope(nil)
	src := "int f(void) {\n\tint a = 1;\n\treturn a;\n}\n"
	lex := lexer.New(pool, "t.c", []byte(src))
	p := parser.New(lex, pool, global)
	p.ParseTranslationUnit()

	gen := New()
	for _, fn := range p.Funcs {
		gen.GenerateFunction(fn)
	}

	var buf bytes.Buffer
	if err := emit.Emit(&buf, gen.Program(), true); err != nil {
		t.Fatalf("emit.Emit: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `#line 2 "t.c"`) {
		t.Fatalf("expected a #line directive for the first statement's line, got:\n%s", out)
	}
	if !strings.Contains(out, "#\n") {
		t.Fatalf("expected a lone '#' increment for the following line, got:\n%s", out)
	}
}
