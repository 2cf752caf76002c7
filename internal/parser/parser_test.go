package parser

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/vmcc-project/vmcc/internal/ast"
	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// parseSrc runs the full lex+parse pipeline over src and returns the
// resulting Parser, or t.Fatal's on an unexpected diag.Error panic.
func parseSrc(t *testing.T, src string) *Parser {
	t.Helper()
	pool := intern.NewPool()
	global := sym.NewScope(nil)
	lex := lexer.New(pool, "t.c", []byte(src))
	p := New(lex, pool, global)
	p.ParseTranslationUnit()
	return p
}

func TestParseFunctionDefinitionRegistersOneFunc(t *testing.T) {
	p := parseSrc(t, `int main(void) { return 0; }`)
	if len(p.Funcs) != 1 {
		t.Fatalf("len(Funcs) = %d, want 1", len(p.Funcs))
	}
	def := p.Funcs[0]
	if def.Sym == nil || def.Sym.Name.String() != "main" {
		t.Fatalf("Funcs[0].Sym = %v, want main", def.Sym)
	}
	if def.FirstChild == nil || def.FirstChild.Kind != ast.Block {
		t.Fatalf("function body root kind = %v, want Block", def.FirstChild.Kind)
	}
}

func TestParseGlobalVariableRecordsInitializer(t *testing.T) {
	p := parseSrc(t, `int counter = 41;`)
	if len(p.Globals) != 1 {
		t.Fatalf("len(Globals) = %d, want 1", len(p.Globals))
	}
	s := p.Globals[0]
	init, ok := p.GlobalInits[s]
	if !ok {
		t.Fatalf("GlobalInits missing entry for %q", s.Name.String())
	}
	if init == nil {
		t.Fatalf("GlobalInits[%q] = nil", s.Name.String())
	}
}

func TestParseTentativeGlobalHasNoInitializer(t *testing.T) {
	p := parseSrc(t, `int counter;`)
	if len(p.Globals) != 1 {
		t.Fatalf("len(Globals) = %d, want 1", len(p.Globals))
	}
	if _, ok := p.GlobalInits[p.Globals[0]]; ok {
		t.Fatalf("expected no GlobalInits entry for an uninitialised tentative global")
	}
	if !p.Globals[0].IsDefined || !p.Globals[0].IsTentative {
		t.Fatalf("Globals[0] = %+v, want IsDefined and IsTentative both set", p.Globals[0])
	}
}

func TestParseExternGlobalIsNotDefined(t *testing.T) {
	p := parseSrc(t, `extern int counter;`)
	if p.Globals[0].IsDefined {
		t.Fatalf("an extern declaration without an initializer must not be a definition")
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	p := parseSrc(t, `int main(void) { return 1 + 2 * 3; }`)
	ret := p.Funcs[0].FirstChild.FirstChild
	if ret.Kind != ast.Return {
		t.Fatalf("first statement kind = %v, want Return", ret.Kind)
	}
	top := ret.FirstChild
	if top.Kind != ast.Add {
		t.Fatalf("top-level expression kind = %v, want Add (multiplication binds tighter)", top.Kind)
	}
	rhs := top.FirstChild.Next
	if rhs.Kind != ast.Mul {
		t.Fatalf("rhs of + kind = %v, want Mul", rhs.Kind)
	}
}

func TestParseIfElseShape(t *testing.T) {
	p := parseSrc(t, `int main(void) { if (1) return 1; else return 2; }`)
	ifNode := p.Funcs[0].FirstChild.FirstChild
	if ifNode.Kind != ast.If {
		t.Fatalf("kind = %v, want If", ifNode.Kind)
	}
	cond, then := ifNode.FirstChild, ifNode.FirstChild.Next
	els := then.Next
	if cond == nil || then == nil || els == nil {
		t.Fatalf("If node missing a child: cond=%v then=%v else=%v", cond, then, els)
	}
}

func TestParseForLoopHasFourChildrenInOrder(t *testing.T) {
	p := parseSrc(t, `int main(void) { for (;;) {} return 0; }`)
	forNode := p.Funcs[0].FirstChild.FirstChild
	if forNode.Kind != ast.For {
		t.Fatalf("kind = %v, want For", forNode.Kind)
	}
	count := 0
	for c := forNode.FirstChild; c != nil; c = c.Next {
		count++
	}
	if count != 4 {
		t.Fatalf("For node has %d children, want 4 (init, cond, post, body)", count)
	}
	if forNode.Label == "" {
		t.Fatalf("For node has no synthesised label for break/continue")
	}
}

func TestParseSwitchCaseAndDefaultLinkedIntoBody(t *testing.T) {
	p := parseSrc(t, `
int main(void) {
	switch (1) {
	case 1:
		return 1;
	default:
		return 0;
	}
}`)
	sw := p.Funcs[0].FirstChild.FirstChild
	if sw.Kind != ast.Switch {
		t.Fatalf("kind = %v, want Switch", sw.Kind)
	}
	body := sw.FirstChild.Next
	var sawCase, sawDefault bool
	for c := body.FirstChild; c != nil; c = c.Next {
		if c.Kind == ast.Case {
			sawCase = true
		}
		if c.Kind == ast.Default {
			sawDefault = true
		}
	}
	if !sawCase || !sawDefault {
		t.Fatalf("switch body sawCase=%v sawDefault=%v, want both true", sawCase, sawDefault)
	}
}

func TestParseStructMemberAccess(t *testing.T) {
	p := parseSrc(t, `
struct point { int x; int y; };
int main(void) {
	struct point p;
	p.x = 1;
	return p.x;
}`)
	declBlock := p.Funcs[0].FirstChild.FirstChild
	decls := declBlock.FirstChild
	if declBlock.Kind != ast.Block || decls == nil || decls.Kind != ast.Decl {
		t.Fatalf("first statement kind = %v, want a Block holding a Decl", declBlock.Kind)
	}
	assignStmt := declBlock.Next
	assign := assignStmt.FirstChild
	if assign.Kind != ast.Assign {
		t.Fatalf("second statement's expr kind = %v, want Assign", assign.Kind)
	}
	member := assign.FirstChild
	if member.Kind != ast.Member || member.MemberName == nil {
		t.Fatalf("assignment lhs kind = %v MemberName=%v, want Member with a name", member.Kind, member.MemberName)
	}
}

func TestParseVariadicFunctionBuiltins(t *testing.T) {
	p := parseSrc(t, `
int sum(int n, ...) {
	__builtin_va_list ap;
	__builtin_va_start(ap, n);
	int v = __builtin_va_arg(ap, int);
	__builtin_va_end(ap);
	return v;
}`)
	if len(p.Funcs) != 1 {
		t.Fatalf("len(Funcs) = %d, want 1", len(p.Funcs))
	}
	if !p.Funcs[0].Sym.Type.Variadic {
		t.Fatalf("sum's function type is not marked variadic")
	}

	body := p.Funcs[0].FirstChild
	vaStartStmt := body.FirstChild.Next
	builtinCall := vaStartStmt.FirstChild
	if builtinCall.Kind != ast.Builtin || builtinCall.BuiltinID != sym.BuiltinVaStart {
		t.Fatalf("second statement's expr kind=%v builtinID=%v, want Builtin/BuiltinVaStart", builtinCall.Kind, builtinCall.BuiltinID)
	}
}

func TestParseAttributeWarningRespectsWarnings(t *testing.T) {
	var buf bytes.Buffer
	diag.SetWarnWriter(&buf)
	defer diag.SetWarnWriter(os.Stderr)

	ws := diag.NewWarningSet()
	ws.Set("attributes", false)

	pool := intern.NewPool()
	global := sym.NewScope(nil)
	lex := lexer.New(pool, "t.c", []byte(`__attribute__((noreturn)) int main(void) { return 0; }`))
	p := New(lex, pool, global)
	p.Warnings = ws

	p.ParseTranslationUnit()
	if strings.Contains(buf.String(), "attribute") {
		t.Fatalf("expected the disabled attributes category to suppress the warning, got %q", buf.String())
	}
}

func TestParseFunctionPointerCallIsIndirect(t *testing.T) {
	p := parseSrc(t, `
int apply(int (*f)(int), int x) {
	return f(x);
}`)
	body := p.Funcs[0].FirstChild
	ret := body.FirstChild
	call := ret.FirstChild
	if call.Kind != ast.Call {
		t.Fatalf("kind = %v, want Call", call.Kind)
	}
	callee := call.FirstChild
	if callee.Kind != ast.Var || callee.Sym == nil {
		t.Fatalf("callee kind = %v, want Var with a symbol", callee.Kind)
	}
	if callee.Sym.Kind == sym.FuncSym {
		t.Fatalf("callee resolved to a FuncSym; expected a function-pointer parameter")
	}
}

func TestParseTentativeGlobalRedeclarationMerges(t *testing.T) {
	p := parseSrc(t, `int counter; int counter;`)
	if len(p.Globals) != 1 {
		t.Fatalf("len(Globals) = %d, want 1 (redeclaration must merge, not duplicate)", len(p.Globals))
	}
	if !p.Globals[0].IsTentative {
		t.Fatalf("two tentative declarations of the same global should stay tentative")
	}
}

func TestParseTentativeGlobalThenDefinitionMerges(t *testing.T) {
	p := parseSrc(t, `int counter; int counter = 7;`)
	if len(p.Globals) != 1 {
		t.Fatalf("len(Globals) = %d, want 1", len(p.Globals))
	}
	s := p.Globals[0]
	if s.IsTentative {
		t.Fatalf("a later initializer must turn a tentative global into a real definition")
	}
	if _, ok := p.GlobalInits[s]; !ok {
		t.Fatalf("GlobalInits missing entry for the merged global")
	}
}

func TestParseFunctionSignatureMismatchIsFatal(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*diag.Error)
		if !ok {
			t.Fatalf("expected recover() to yield *diag.Error, got %T", r)
		}
		if !strings.Contains(err.Error(), "conflicting") {
			t.Fatalf("error = %q, want it to mention a conflicting redeclaration", err.Error())
		}
	}()
	parseSrc(t, `int f(int); int f(long);`)
}

func TestParseFunctionDoubleDefinitionIsFatal(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*diag.Error)
		if !ok {
			t.Fatalf("expected recover() to yield *diag.Error, got %T", r)
		}
		if !strings.Contains(err.Error(), "redefinition") {
			t.Fatalf("error = %q, want it to mention a redefinition", err.Error())
		}
	}()
	parseSrc(t, `int f(void) { return 0; } int f(void) { return 1; }`)
}
