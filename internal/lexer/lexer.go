// Package lexer tokenises an already-preprocessed C translation unit (spec
// 4.1). It tracks source location through embedded #line directives and
// exposes a one-token look-ahead/push-back interface for the parser.
package lexer

import (
	"strings"

	"github.com/vmcc-project/vmcc/internal/diag"
	"github.com/vmcc-project/vmcc/internal/intern"
)

// multiCharPuncts lists punctuation sequences longer than one character,
// longest first so the scanner can greedily match.
var multiCharPuncts = []string{
	"<<=", ">>=", "...",
	"->", "++", "--", "&&", "||", "==", "!=", "<=", ">=", "<<", ">>",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

const singleCharPuncts = "+-*/%&|^!~<>=()[]{}.?:,;"

// Lexer scans one translation unit. It owns the current look-ahead token
// and the current #line-adjusted file/line counters.
type Lexer struct {
	pool *intern.Pool

	src  []byte
	pos  int
	line int // physical line, 1-based
	file *intern.Symbol

	// #line bookkeeping: displayLine/displayFile are what get attached to
	// tokens; they track the physical position plus any #line adjustment.
	displayLine int
	displayFile *intern.Symbol

	cur    *Token
	pushed *Token
}

// New creates a Lexer over src, attributing positions to filename until a
// #line directive says otherwise.
func New(pool *intern.Pool, filename string, src []byte) *Lexer {
	f := pool.Intern(filename)
	l := &Lexer{
		pool:        pool,
		src:         normalizeNewlines(src),
		pos:         0,
		line:        1,
		file:        f,
		displayLine: 1,
		displayFile: f,
	}
	l.Advance()
	return l
}

// normalizeNewlines turns CRLF into LF and rejects a lone CR (spec 4.1).
func normalizeNewlines(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\r' {
			if i+1 < len(src) && src[i+1] == '\n' {
				continue
			}
			diag.Fatal(diag.Lex, diag.Position{Line: 0}, "lone carriage return in source")
		}
		out = append(out, c)
	}
	return out
}

// Cur returns the current look-ahead token without consuming it.
func (l *Lexer) Cur() *Token { return l.cur }

// posOf returns the diag.Position of t (or, for a nil t, of the lexer's
// current display position), for error reporting.
func (l *Lexer) posOf(t *Token) diag.Position {
	if t == nil {
		return diag.Position{File: l.displayFile.String(), Line: l.displayLine}
	}
	return diag.Position{File: t.File.String(), Line: t.Line, Snippet: t.Text.String()}
}

// PushBack makes tok the current token and queues the previous current
// token to be returned by the next Advance, supporting the parser's
// one-token look-ahead beyond Cur().
func (l *Lexer) PushBack(tok *Token) {
	l.pushed = l.cur
	l.cur = tok
}

// Take returns the current token and advances past it.
func (l *Lexer) Take() *Token {
	t := l.cur
	l.Advance()
	return t
}

// Advance discards the current token and lexes the next one into Cur().
func (l *Lexer) Advance() {
	if l.pushed != nil {
		l.cur = l.pushed
		l.pushed = nil
		return
	}
	l.cur = l.next()
}

// Is reports whether the current token's text equals s.
func (l *Lexer) Is(s string) bool {
	return l.cur.Is(s)
}

// Accept consumes the current token and returns true if it equals s,
// otherwise leaves the lexer position unchanged and returns false.
func (l *Lexer) Accept(s string) bool {
	if l.Is(s) {
		l.Advance()
		return true
	}
	return false
}

// Expect consumes the current token if it equals s, otherwise reports a
// fatal parse error carrying msg.
func (l *Lexer) Expect(s string, msg string) {
	if !l.Accept(s) {
		diag.Fatal(diag.Parse, l.posOf(l.cur), "%s (got %q)", msg, l.cur.String())
	}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advanceByte() byte {
	c := l.peekByte()
	l.pos++
	if c == '\n' {
		l.line++
		l.displayLine++
	}
	return c
}

// skipWhitespaceAndDirectives consumes blanks, comments-cannot-appear (the
// preprocessor already stripped them), and #line/#pragma directives between
// tokens, exactly as spec 4.1 describes.
func (l *Lexer) skipWhitespaceAndDirectives() {
	for {
		progressed := false
		for l.peekByte() == ' ' || l.peekByte() == '\t' || l.peekByte() == '\v' || l.peekByte() == '\f' {
			l.advanceByte()
			progressed = true
		}
		if l.peekByte() == '\n' {
			l.advanceByte()
			progressed = true
			continue
		}
		if l.peekByte() == '#' {
			l.handleDirective()
			progressed = true
			continue
		}
		if !progressed {
			break
		}
	}
}

// handleDirective consumes a single '#line N "file"' or '#pragma ...' or
// lone '#' directive line (spec 4.1). The leading '#' is still unconsumed
// on entry.
func (l *Lexer) handleDirective() {
	l.advanceByte() // '#'
	for l.peekByte() == ' ' || l.peekByte() == '\t' {
		l.advanceByte()
	}
	if l.peekByte() == '\n' || l.pos >= len(l.src) {
		// lone '#': single-line increment, no filename change.
		return
	}
	if l.matchesAt("line") && (l.peekByteAt(4) == ' ' || l.peekByteAt(4) == '\t') {
		for i := 0; i < 4; i++ {
			l.advanceByte()
		}
		for l.peekByte() == ' ' || l.peekByte() == '\t' {
			l.advanceByte()
		}
	}
	start := l.pos
	for isDigit(l.peekByte()) {
		l.advanceByte()
	}
	if l.pos > start {
		numText := string(l.src[start:l.pos])
		n := 0
		for _, c := range numText {
			n = n*10 + int(c-'0')
		}
		for l.peekByte() == ' ' || l.peekByte() == '\t' {
			l.advanceByte()
		}
		if l.peekByte() == '"' {
			l.advanceByte()
			fs := l.pos
			for l.peekByte() != '"' && l.peekByte() != '\n' && l.pos < len(l.src) {
				l.advanceByte()
			}
			fname := string(l.src[fs:l.pos])
			if l.peekByte() == '"' {
				l.advanceByte()
			}
			l.displayFile = l.pool.Intern(fname)
		}
		// N names the line after the directive; consuming the directive's
		// own newline brings displayLine up to N.
		l.displayLine = n - 1
		for l.peekByte() != '\n' && l.pos < len(l.src) {
			l.advanceByte()
		}
		return
	}
	// Not a #line: either #pragma or malformed. Both are skipped to EOL;
	// only #line and #pragma/null directives are legal per spec 4.1.
	word := l.pos
	for isAlnum(l.peekByte(), word == l.pos) {
		l.advanceByte()
	}
	directive := string(l.src[word:l.pos])
	if directive != "pragma" {
		diag.Fatal(diag.Lex, diag.Position{File: l.displayFile.String(), Line: l.displayLine}, "unrecognized preprocessor directive %q", directive)
	}
	for l.peekByte() != '\n' && l.pos < len(l.src) {
		l.advanceByte()
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnumStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte, first bool) bool {
	if first {
		return isAlnumStart(c)
	}
	return isAlnumStart(c) || isDigit(c)
}

// next lexes and returns the next token, handling whitespace/#line/#pragma
// transparently.
func (l *Lexer) next() *Token {
	l.skipWhitespaceAndDirectives()

	line, file := l.displayLine, l.displayFile
	if l.pos >= len(l.src) {
		return &Token{Kind: EOF, Text: l.pool.Intern(""), File: file, Line: line}
	}

	c := l.peekByte()

	if isAlnumStart(c) {
		start := l.pos
		for isAlnum(l.peekByte(), false) {
			l.advanceByte()
		}
		text := string(l.src[start:l.pos])
		return &Token{Kind: Alnum, Text: l.pool.Intern(text), File: file, Line: line}
	}

	if isDigit(c) || (c == '.' && isDigit(l.peekByteAt(1))) {
		start := l.pos
		for {
			b := l.peekByte()
			if isAlnum(b, false) || b == '.' {
				l.advanceByte()
				continue
			}
			// Exponent sign directly after e/E/p/P is part of the number.
			if (b == '+' || b == '-') && l.pos > start {
				prev := l.src[l.pos-1]
				if prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P' {
					l.advanceByte()
					continue
				}
			}
			break
		}
		text := string(l.src[start:l.pos])
		return &Token{Kind: Number, Text: l.pool.Intern(text), File: file, Line: line}
	}

	if c == '"' {
		return l.lexString(file, line)
	}
	if c == '\'' {
		return l.lexChar(file, line)
	}

	for _, p := range multiCharPuncts {
		if l.matchesAt(p) {
			for range p {
				l.advanceByte()
			}
			return &Token{Kind: Punct, Text: l.pool.Intern(p), File: file, Line: line}
		}
	}
	if strings.IndexByte(singleCharPuncts, c) >= 0 {
		l.advanceByte()
		return &Token{Kind: Punct, Text: l.pool.Intern(string(c)), File: file, Line: line}
	}

	diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "unrecognized byte %q", c)
	panic("unreachable")
}

// State is an opaque snapshot of the lexer's position, for the parser's
// speculative parenthesised-declarator lookahead (spec 4.5 "then a
// direct-declarator (identifier or parenthesised declarator)"). Callers
// must only obtain one from Snapshot and feed it back to Restore.
type State struct {
	pos         int
	line        int
	displayLine int
	displayFile *intern.Symbol
	cur         *Token
	pushed      *Token
}

// Snapshot captures the lexer's current position.
func (l *Lexer) Snapshot() State {
	return State{pos: l.pos, line: l.line, displayLine: l.displayLine, displayFile: l.displayFile, cur: l.cur, pushed: l.pushed}
}

// Restore rewinds the lexer to a previously captured State.
func (l *Lexer) Restore(s State) {
	l.pos, l.line, l.displayLine, l.displayFile, l.cur, l.pushed = s.pos, s.line, s.displayLine, s.displayFile, s.cur, s.pushed
}

func (l *Lexer) matchesAt(s string) bool {
	if l.pos+len(s) > len(l.src) {
		return false
	}
	return string(l.src[l.pos:l.pos+len(s)]) == s
}

// lexString scans a double-quoted string literal, resolving escapes per
// spec 4.1 ("standard escapes ... and limited octal").
func (l *Lexer) lexString(file *intern.Symbol, line int) *Token {
	startPos := l.pos
	l.advanceByte() // opening quote
	var out []byte
	for {
		if l.pos >= len(l.src) {
			diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "unterminated string literal")
		}
		c := l.peekByte()
		if c == '"' {
			l.advanceByte()
			break
		}
		if c == '\n' {
			diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "unterminated string literal")
		}
		if c == '\\' {
			l.advanceByte()
			out = append(out, l.consumeEscape(file, line))
			continue
		}
		out = append(out, c)
		l.advanceByte()
	}
	raw := string(l.src[startPos:l.pos])
	tok := &Token{Kind: String, Text: l.pool.Intern(raw), File: file, Line: line}
	tok.Bytes = append(out, 0) // NUL terminator, matching spec's string body
	return tok
}

// lexChar scans a single-quoted character literal, requiring exactly one
// result byte per spec 4.1.
func (l *Lexer) lexChar(file *intern.Symbol, line int) *Token {
	startPos := l.pos
	l.advanceByte() // opening quote
	if l.pos >= len(l.src) || l.peekByte() == '\'' {
		diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "empty character literal")
	}
	var value byte
	if l.peekByte() == '\\' {
		l.advanceByte()
		value = l.consumeEscape(file, line)
	} else {
		value = l.peekByte()
		l.advanceByte()
	}
	if l.peekByte() != '\'' {
		diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "multi-byte character literal not supported")
	}
	l.advanceByte()
	raw := string(l.src[startPos:l.pos])
	tok := &Token{Kind: Char, Text: l.pool.Intern(raw), File: file, Line: line}
	tok.Bytes = []byte{value}
	return tok
}

// consumeEscape resolves one escape sequence after a consumed backslash:
// \a \b \t \n \v \f \r \e \" \' \? \\ and octal \NNN (spec 4.1).
func (l *Lexer) consumeEscape(file *intern.Symbol, line int) byte {
	if l.pos >= len(l.src) {
		diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "unterminated escape sequence")
	}
	c := l.advanceByte()
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'v':
		return '\v'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 'e':
		return 27
	case '"':
		return '"'
	case '\'':
		return '\''
	case '?':
		return '?'
	case '\\':
		return '\\'
	}
	if c >= '0' && c <= '7' {
		val := int(c - '0')
		for i := 0; i < 2 && l.peekByte() >= '0' && l.peekByte() <= '7'; i++ {
			val = val*8 + int(l.advanceByte()-'0')
		}
		return byte(val)
	}
	diag.Fatal(diag.Lex, diag.Position{File: file.String(), Line: line}, "unsupported escape sequence '\\%c'", c)
	panic("unreachable")
}
