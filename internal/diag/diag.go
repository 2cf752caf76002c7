// Package diag implements the compiler's single error taxonomy (spec ch. 7):
// internal, lex, parse, semantic, and feature-not-implemented errors are all
// fatal and reported uniformly; warnings are reported but never terminate.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Kind classifies a diagnostic.
type Kind int

const (
	Internal Kind = iota
	Lex
	Parse
	Semantic
	Unimplemented
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal error"
	case Lex:
		return "lex error"
	case Parse:
		return "parse error"
	case Semantic:
		return "semantic error"
	case Unimplemented:
		return "not implemented"
	}
	return "error"
}

// Position locates a diagnostic in the original (preprocessed) source.
type Position struct {
	File string
	Line int
	// Snippet and Col are optional; when Snippet is non-empty a caret is
	// printed beneath it at Col.
	Snippet string
	Col     int
}

func (p Position) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Error is the sentinel panic value used to unwind to the top-level driver
// on any fatal diagnostic. It is never recovered from below cmd/vmcc.
type Error struct {
	Kind Kind
	Pos  Position
	Msg  string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	if e.Pos.Snippet != "" {
		msg += "\n" + e.Pos.Snippet + "\n" + strings.Repeat(" ", e.Pos.Col) + "^"
	}
	return msg
}

// Fatal reports a fatal diagnostic and unwinds the current goroutine via
// panic(*Error). The outermost driver is responsible for recovering it,
// printing it, and exiting with a non-zero status.
func Fatal(kind Kind, pos Position, format string, args ...any) {
	panic(&Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// WarningSet tracks which -f<name>/-fno-<name> categories are enabled. Unknown
// names default to enabled, matching a compiler that warns unless told not
// to about a specific thing it recognizes.
type WarningSet struct {
	enabled map[string]bool
}

// NewWarningSet returns a warning set with every warning enabled.
func NewWarningSet() *WarningSet {
	return &WarningSet{enabled: make(map[string]bool)}
}

// Set enables or disables the named warning category.
func (w *WarningSet) Set(name string, on bool) {
	w.enabled[name] = on
}

// Enabled reports whether the named warning category is currently on.
func (w *WarningSet) Enabled(name string) bool {
	if on, ok := w.enabled[name]; ok {
		return on
	}
	return true
}

// warnWriter is where Warn prints; it defaults to the process's real
// stderr but cmd/vmcc redirects it to whatever writer it was given, so a
// test driving the CLI through injected io.Writers (rather than the real
// os.Stderr) still observes warnings.
var warnWriter io.Writer = os.Stderr

// SetWarnWriter installs the writer warnings print to.
func SetWarnWriter(w io.Writer) {
	warnWriter = w
}

// Warn prints a non-fatal diagnostic if category is enabled in ws. A nil
// WarningSet means "everything enabled", matching the CLI's default.
func Warn(ws *WarningSet, category string, pos Position, format string, args ...any) {
	if ws != nil && !ws.Enabled(category) {
		return
	}
	fmt.Fprintf(warnWriter, "%s: warning: %s\n", pos, fmt.Sprintf(format, args...))
}

// logger is the ambient structured logger for operational detail (pass
// timing, entered/left function, etc.) that is not itself a diagnostic.
// It defaults to discarding everything; cmd/vmcc wires it up to stderr at
// debug level when -v is given.
var logger = zerolog.Nop()

// SetLogger installs the logger used for ambient operational tracing.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// L returns the current ambient logger.
func L() *zerolog.Logger {
	return &logger
}
