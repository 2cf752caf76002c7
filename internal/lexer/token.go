package lexer

import "github.com/vmcc-project/vmcc/internal/intern"

// Kind is the tagged variant a Token belongs to (spec 3 "Token").
type Kind int

const (
	Alnum Kind = iota // identifier or keyword
	Number
	Char
	String
	Punct
	EOF
)

func (k Kind) String() string {
	switch k {
	case Alnum:
		return "alnum"
	case Number:
		return "number"
	case Char:
		return "char"
	case String:
		return "string"
	case Punct:
		return "punct"
	case EOF:
		return "eof"
	}
	return "?"
}

// Token is a tagged variant, plus an optional literal-prefix marker, the
// interned body, a source filename handle, and a 1-based line number.
// Tokens are immutable once produced and are freely shared by the lexer,
// parser, AST, and generator for diagnostics.
type Token struct {
	Kind   Kind
	Prefix string // e.g. "L", "u8" on a string/char literal; "" otherwise
	Text   *intern.Symbol
	File   *intern.Symbol
	Line   int
	Col    int

	// Decoded literal payload, filled in by the lexer for Char and String
	// tokens (escapes already resolved); Number tokens are NOT evaluated
	// here per spec 4.1 ("numbers ... parsed later").
	Bytes []byte
}

// Is reports whether the token's text matches s exactly (used for both
// keywords and punctuation, matching spec's lexer.is()).
func (t *Token) Is(s string) bool {
	if t == nil {
		return false
	}
	return t.Text.String() == s
}

// String renders the token for diagnostics.
func (t *Token) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind == EOF {
		return "<eof>"
	}
	return t.Text.String()
}
