// Command vmcc compiles one already-preprocessed C translation unit to the
// virtual machine's textual assembly (spec 4.8).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vmcc-project/vmcc/internal/codegen"
	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/emit"
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/parser"
	"github.com/vmcc-project/vmcc/internal/sym"
)

var version = "0.1.0"

// recognizedStds is the fixed set of --std spellings vmcc accepts. None of
// them currently changes parser behavior (spec ch. 6 "an honestly-recorded
// limitation, not a silent no-op") -- an unrecognized value is still a
// fatal CLI error.
var recognizedStds = map[string]bool{"c17": true, "gnu17": true}

var (
	outputPath string
	debugLines bool
	verbose    bool
	std        string
	warnFlags  []string
)

func main() {
	os.Exit(run())
}

// run recovers any panic that escapes compileFile's own *diag.Error
// recovery -- an internal compiler error rather than a reported
// diagnostic -- and exits 125, reserving that code exclusively for
// crashes (spec ch. 6 "125 convention reserved for internal crashes").
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "vmcc: internal error: %v\n", r)
			code = 125
		}
	}()
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vmcc [file]",
		Short:         "vmcc compiles a preprocessed C translation unit to virtual-machine assembly",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			diag.SetWarnWriter(errOut)
			if verbose {
				diag.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: errOut}).With().Timestamp().Logger())
			}
			if std != "" && !recognizedStds[std] {
				return fmt.Errorf("vmcc: unrecognized --std=%s", std)
			}
			ws, err := parseWarningFlags(warnFlags)
			if err != nil {
				return fmt.Errorf("vmcc: %w", err)
			}
			return compileFile(args[0], out, errOut, ws)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output assembly path (default: input with .s extension, - for stdout)")
	rootCmd.Flags().BoolVarP(&debugLines, "debug", "g", false, "emit #line directives in the generated assembly")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log compilation pass timing to stderr")
	rootCmd.Flags().StringVar(&std, "std", "", "source dialect (c17, gnu17); validated but does not yet change parsing")
	rootCmd.Flags().StringArrayVarP(&warnFlags, "warn", "f", nil, "toggle a warning category: -f<name> enables it, -fno-<name> disables it")

	return rootCmd
}

// parseWarningFlags turns a list of "<name>"/"no-<name>" flag values (as
// collected from repeated -f/-fno- options) into a diag.WarningSet.
func parseWarningFlags(flags []string) (*diag.WarningSet, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	ws := diag.NewWarningSet()
	for _, f := range flags {
		if strings.HasPrefix(f, "no-") {
			ws.Set(strings.TrimPrefix(f, "no-"), false)
		} else {
			ws.Set(f, true)
		}
	}
	return ws, nil
}

// compileFile drives the whole pipeline -- lex, parse, generate, emit --
// for a single translation unit, recovering the one *diag.Error any stage
// panics with (spec ch. 7 "fatal ... reported uniformly") and reporting it
// the way a compiler driver reports a fatal error: a message on stderr and
// a non-zero exit, never a Go stack trace.
func compileFile(path string, out, errOut io.Writer, ws *diag.WarningSet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if dErr, ok := r.(*diag.Error); ok {
				fmt.Fprintf(errOut, "vmcc: %s\n", dErr.Error())
				err = dErr
				return
			}
			panic(r)
		}
	}()

	src, readErr := os.ReadFile(path)
	if readErr != nil {
		return fmt.Errorf("vmcc: %w", readErr)
	}

	pool := intern.NewPool()
	global := sym.NewScope(nil)
	lex := lexer.New(pool, path, src)
	p := parser.New(lex, pool, global)
	p.Warnings = ws

	diag.L().Debug().Str("file", path).Msg("parsing")
	p.ParseTranslationUnit()

	gen := codegen.New()
	for _, s := range p.Globals {
		if s.Kind == sym.FuncSym || !s.IsDefined {
			continue
		}
		gen.GenerateGlobal(s, p.GlobalInits[s])
	}
	diag.L().Debug().Int("count", len(p.Funcs)).Msg("generating functions")
	for _, fn := range p.Funcs {
		gen.GenerateFunction(fn)
	}

	w, closeFn, openErr := openOutput(path)
	if openErr != nil {
		return fmt.Errorf("vmcc: %w", openErr)
	}
	defer closeFn()

	if emitErr := emit.Emit(w, gen.Program(), debugLines); emitErr != nil {
		return fmt.Errorf("vmcc: %w", emitErr)
	}
	return nil
}

// openOutput resolves -o (or its default, the input file's base name with
// its extension replaced by ".s", in the current directory) to a writer;
// "-" means stdout.
func openOutput(inputPath string) (io.Writer, func() error, error) {
	path := outputPath
	if path == "" {
		path = replaceExtension(inputPath, ".s")
	}
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func replaceExtension(path, ext string) string {
	base := filepath.Base(path)
	if dot := strings.LastIndex(base, "."); dot != -1 {
		base = base[:dot]
	}
	return base + ext
}
