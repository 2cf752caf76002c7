package lexer

import (
	"testing"

	"github.com/vmcc-project/vmcc/internal/intern"
)

func collect(l *Lexer) []string {
	var out []string
	for l.Cur().Kind != EOF {
		out = append(out, l.Cur().String())
		l.Advance()
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte("int main(void) { return 0; }"))
	got := collect(l)
	want := []string{"int", "main", "(", "void", ")", "{", "return", "0", ";", "}"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLexMultiCharPunct(t *testing.T) {
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte("a <<= b; c->d; e...f;"))
	got := collect(l)
	wantContains := []string{"<<=", "->", "..."}
	for _, w := range wantContains {
		found := false
		for _, g := range got {
			if g == w {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected token %q among %v", w, got)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte(`"a\nb\t\""`))
	tok := l.Cur()
	if tok.Kind != String {
		t.Fatalf("Kind = %v, want String", tok.Kind)
	}
	want := "a\nb\t\"\x00"
	if string(tok.Bytes) != want {
		t.Fatalf("Bytes = %q, want %q", tok.Bytes, want)
	}
}

func TestLexCharLiteral(t *testing.T) {
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte(`'\n'`))
	tok := l.Cur()
	if tok.Kind != Char {
		t.Fatalf("Kind = %v, want Char", tok.Kind)
	}
	if len(tok.Bytes) != 1 || tok.Bytes[0] != '\n' {
		t.Fatalf("Bytes = %v, want [\\n]", tok.Bytes)
	}
}

func TestLexLineDirectiveUpdatesLocation(t *testing.T) {
	pool := intern.NewPool()
	src := "int a;\n#line 100 \"other.c\"\nint b;\n"
	l := New(pool, "t.c", []byte(src))
	// advance past "int a ;"
	for i := 0; i < 3; i++ {
		l.Advance()
	}
	if l.Cur().File.String() != "other.c" {
		t.Fatalf("File = %q, want other.c", l.Cur().File.String())
	}
	if l.Cur().Line != 100 {
		t.Fatalf("Line = %d, want 100", l.Cur().Line)
	}
}

func TestAcceptAndExpect(t *testing.T) {
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte("( )"))
	if !l.Accept("(") {
		t.Fatalf("expected Accept(\"(\") to succeed")
	}
	l.Expect(")", "expected closing paren")
}

func TestExpectFatalOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Expect to panic on mismatch")
		}
	}()
	pool := intern.NewPool()
	l := New(pool, "t.c", []byte("x"))
	l.Expect(")", "expected closing paren")
}
