// Package ast defines the typed abstract syntax tree the parser builds and
// the code generator lowers (spec ch. 3 "AST node", 4.6).
package ast

import (
	"github.com/vmcc-project/vmcc/internal/intern"
	"github.com/vmcc-project/vmcc/internal/lexer"
	"github.com/vmcc-project/vmcc/internal/sym"
)

// Kind is the closed set of AST node tags (spec 3 "AST node").
type Kind int

const (
	Num Kind = iota // integer literal (IntValue)
	FloatLit        // floating literal (FloatValue)
	StrLit          // string literal (StrLabel names the emitted data label)
	CharLit
	Var // identifier access (Sym)
	FuncName // __func__

	// Unary
	Neg
	Not    // !
	BitNot // ~
	Addr   // &
	Deref  // *
	PreInc
	PreDec
	PostInc
	PostDec

	// Binary arithmetic / bitwise
	Add
	Sub
	Mul
	Div
	Mod
	Shl
	Shr
	BitAnd
	BitOr
	BitXor

	// Comparisons
	Eq
	Ne
	Lt
	Le
	Gt
	Ge

	// Logical
	LogAnd
	LogOr

	Assign         // plain =
	CompoundAssign // += -= etc, Op names which one

	Member    // a.b
	MemberPtr // a->b
	Index     // a[b]; the parser lowers subscripts to *(a+b) itself, so no node of this kind is built
	Call
	Cast
	Sizeof
	Cond  // ?:
	Comma // sequence

	If
	While
	Do
	For
	Switch
	Case
	Default
	Break
	Continue
	Goto
	Label
	Return
	Block // compound statement
	ExprStmt
	StmtExpr // ({ ... })

	Decl     // a declaration (variable, possibly with initializer)
	InitList // aggregate initializer list
	Param    // function parameter
	FuncDef  // a whole function definition, root of the generator's per-function AST
	Builtin  // __builtin_va_start/va_arg/va_end/va_copy
)

// Node is a tagged AST node with an ordered child list (first/last child
// plus next-sibling pointers), carrying its resolved type and originating
// token (spec 3 "AST node").
type Node struct {
	Kind Kind
	Tok  *lexer.Token
	Type *sym.Type

	FirstChild, LastChild *Node
	Next                  *Node // next sibling

	// Payload, meaning depends on Kind.
	IntValue     int64
	FloatValue   float64
	Bytes        []byte         // StrLit body
	StrLabel     string         // StrLit / FuncName emitted data label
	Sym          *sym.Symbol    // Var, Call callee, Label target
	MemberName   *intern.Symbol // Member / MemberPtr
	MemberOffset int64          // Member / MemberPtr, filled in once the record type is known
	Op           string         // CompoundAssign operator spelling ("+=", ...), Builtin name
	Label        string         // Goto / Label / Case fallthrough label text
	BuiltinID    sym.Builtin

	// Params holds a FuncDef's parameter symbols in declaration order
	// (nil entries mark an unnamed parameter), so codegen never has to
	// re-resolve names through a scope lookup.
	Params []*sym.Symbol
}

// New creates a bare node of the given kind at tok.
func New(kind Kind, tok *lexer.Token) *Node {
	return &Node{Kind: kind, Tok: tok}
}

// Append adds child as this node's new last child.
func (n *Node) Append(child *Node) *Node {
	if child == nil {
		return n
	}
	if n.FirstChild == nil {
		n.FirstChild = child
	} else {
		n.LastChild.Next = child
	}
	n.LastChild = child
	return n
}

// Children returns the child list as a slice, for callers that want
// indexed access instead of walking Next links.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}

// Detach removes child from n's child list. It is a no-op if child is not
// actually a child of n.
func (n *Node) Detach(child *Node) {
	if n.FirstChild == child {
		n.FirstChild = child.Next
		if n.LastChild == child {
			n.LastChild = nil
		}
		child.Next = nil
		return
	}
	for c := n.FirstChild; c != nil; c = c.Next {
		if c.Next == child {
			c.Next = child.Next
			if n.LastChild == child {
				n.LastChild = c
			}
			child.Next = nil
			return
		}
	}
}

// MakeCast wraps expr in a Cast node to target if its type differs, otherwise
// returns expr unchanged (spec 4.6 "cast (wrap in a cast node if the
// target type differs)").
func MakeCast(expr *Node, target *sym.Type) *Node {
	if expr.Type != nil && sym.Equal(expr.Type, target) {
		return expr
	}
	n := New(Cast, expr.Tok)
	n.Type = target
	n.Append(expr)
	return n
}

// PromoteInt wraps expr in a cast to int if its type is narrower than int
// (spec 4.6 "promote").
func PromoteInt(expr *Node) *Node {
	if expr.Type == nil || !expr.Type.IsInteger() {
		return expr
	}
	promoted := sym.Promote(expr.Type)
	return MakeCast(expr, promoted)
}

// Decay wraps expr in an implicit array-to-pointer / function-to-pointer
// cast, per spec 4.5 ("array-to-pointer decay happens on every use of an
// array lvalue except as the operand of & or sizeof, or as the initialiser
// of a character array") (spec 4.6 "decay").
func Decay(expr *Node) *Node {
	if expr.Type == nil || !expr.Type.IsIndirection() && !expr.Type.IsFunction() {
		return expr
	}
	decayed := sym.Decay(expr.Type)
	if decayed == expr.Type {
		return expr
	}
	return MakeCast(expr, decayed)
}

// MakePredicate casts expr to bool for if/while/for/?: conditions (spec 4.6
// "make_predicate").
func MakePredicate(expr *Node) *Node {
	return MakeCast(expr, sym.TyBool)
}
