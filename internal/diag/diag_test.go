package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestFatalPanicsWithError(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*Error)
		if !ok {
			t.Fatalf("expected recover() to yield *Error, got %T", r)
		}
		if err.Kind != Semantic {
			t.Fatalf("Kind = %v, want Semantic", err.Kind)
		}
		if err.Pos.Line != 7 {
			t.Fatalf("Pos.Line = %d, want 7", err.Pos.Line)
		}
	}()
	Fatal(Semantic, Position{File: "a.c", Line: 7}, "redefinition of %q", "x")
}

func TestWarningSetDefaultsEnabled(t *testing.T) {
	ws := NewWarningSet()
	if !ws.Enabled("unused") {
		t.Fatalf("expected unknown warning category to default to enabled")
	}
	ws.Set("unused", false)
	if ws.Enabled("unused") {
		t.Fatalf("expected disabled warning category to report disabled")
	}
}

func TestWarnWritesToInjectedWriter(t *testing.T) {
	var buf bytes.Buffer
	old := warnWriter
	SetWarnWriter(&buf)
	defer SetWarnWriter(old)

	Warn(nil, "unused", Position{File: "a.c", Line: 3}, "variable %q is never read", "x")
	if !strings.Contains(buf.String(), "a.c:3") || !strings.Contains(buf.String(), "never read") {
		t.Fatalf("Warn output = %q, want it to mention the position and message", buf.String())
	}
}

func TestWarnRespectsDisabledCategory(t *testing.T) {
	var buf bytes.Buffer
	old := warnWriter
	SetWarnWriter(&buf)
	defer SetWarnWriter(old)

	ws := NewWarningSet()
	ws.Set("unused", false)
	Warn(ws, "unused", Position{File: "a.c", Line: 3}, "variable %q is never read", "x")
	if buf.Len() != 0 {
		t.Fatalf("Warn wrote %q for a disabled category, want nothing", buf.String())
	}
}
