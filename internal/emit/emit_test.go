package emit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vmcc-project/vmcc/internal/vm"
)

func TestEmitWritesGlobalSigils(t *testing.T) {
	prog := &Program{Globals: []Global{
		{Name: "main", Public: true, Items: []Item{
			InstrItem(vm.I(vm.ENTER, vm.ImmOp(0))),
			InstrItem(vm.I(vm.MOV, vm.RegOp(vm.R0), vm.ImmOp(0))),
			InstrItem(vm.I(vm.RET)),
		}},
		{Name: "helper", Public: false, Items: []Item{
			InstrItem(vm.I(vm.RET)),
		}},
	}}

	var buf bytes.Buffer
	if err := Emit(&buf, prog, false); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "= main\n") {
		t.Fatalf("expected public global sigil for main, got:\n%s", out)
	}
	if !strings.Contains(out, "@ helper\n") {
		t.Fatalf("expected external symbol sigil for helper, got:\n%s", out)
	}
	if !strings.Contains(out, "\n\n\n@ helper") {
		t.Fatalf("expected three blank lines between globals, got:\n%s", out)
	}
}

func TestEmitSuppressesLineDirectivesWhenNotDebug(t *testing.T) {
	prog := &Program{Globals: []Global{
		{Name: "f", Public: true, Items: []Item{
			LineItem("a.c", 10),
			InstrItem(vm.I(vm.RET)),
		}},
	}}
	var buf bytes.Buffer
	Emit(&buf, prog, false)
	if strings.Contains(buf.String(), "#line") {
		t.Fatalf("expected no #line output without debug")
	}
}

func TestEmitWritesLineDirectivesWhenDebug(t *testing.T) {
	prog := &Program{Globals: []Global{
		{Name: "f", Public: true, Items: []Item{
			LineItem("a.c", 10),
			InstrItem(vm.I(vm.RET)),
		}},
	}}
	var buf bytes.Buffer
	Emit(&buf, prog, true)
	out := buf.String()
	if !strings.HasPrefix(out, "#line manual\n") {
		t.Fatalf("expected #line manual as the first line, got:\n%s", out)
	}
	if !strings.Contains(out, `#line 10 "a.c"`) {
		t.Fatalf("expected a #line directive for the line marker, got:\n%s", out)
	}
}

func TestFormatImmediateSwitchesToHexOutsideByteRange(t *testing.T) {
	if got := formatImmediate(100); got != "100" {
		t.Fatalf("formatImmediate(100) = %q, want decimal", got)
	}
	if got := formatImmediate(100000); got == "100000" {
		t.Fatalf("formatImmediate(100000) should not be plain decimal")
	}
}

func TestQuoteBytesEscapesNonPrintable(t *testing.T) {
	got := quoteBytes([]byte{'h', 'i', 0, 0x7f})
	if !strings.HasPrefix(got, `"hi`) {
		t.Fatalf("expected printable prefix preserved, got %q", got)
	}
	if !strings.Contains(got, "'00") || !strings.Contains(got, "'7f") {
		t.Fatalf("expected quoted-byte escapes for NUL and DEL, got %q", got)
	}
}
