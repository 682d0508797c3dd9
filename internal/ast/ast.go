// Package ast defines the surface syntax tree shared by the lexer, the
// header/body parsers and the canonicalizer. It intentionally covers only
// the subset of Lumen needed to drive module loading and type inference:
// literals, identifiers, let bindings, lambdas, application and a handful
// of binary operators.
package ast

import "fmt"

// Pos is a single source location.
type Pos struct {
	Line, Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span covers a range of source between two positions.
type Span struct {
	Start, End Pos
	File       string
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%s-%s", s.File, s.Start, s.End)
}

// Import is a single import line in a module header.
type Import struct {
	Path Pos
	Name string // dotted module name, e.g. "Std.List"
}

// Header is everything the HeaderParser extracts without looking at the body.
type Header struct {
	Name    string // declared module name, may be empty (defaults from filename)
	NamePos Pos
	Imports []Import
	Exposes []string // exported identifiers; empty means "export everything"
}

// File is a fully parsed source file: header plus top-level definitions.
type File struct {
	Header Header
	Defs   []Def
}

// Node is implemented by every AST node that carries a position.
type Node interface {
	Position() Pos
}

// Def is a top-level binding: `name = expr` or `name params... = expr`.
type Def struct {
	Pos    Pos
	Name   string
	Params []string
	Body   Expr
}

func (d *Def) Position() Pos { return d.Pos }

// Expr is the base interface for expressions.
type Expr interface {
	Node
	exprNode()
}

// Ident is a bare variable reference.
type Ident struct {
	Pos  Pos
	Name string
}

func (i *Ident) Position() Pos { return i.Pos }
func (i *Ident) exprNode()     {}

// LitKind distinguishes literal value shapes.
type LitKind int

const (
	IntLit LitKind = iota
	StringLit
	BoolLit
)

// Lit is a literal value.
type Lit struct {
	Pos   Pos
	Kind  LitKind
	Int   int64
	Str   string
	Bool  bool
}

func (l *Lit) Position() Pos { return l.Pos }
func (l *Lit) exprNode()     {}

// Lambda is an anonymous function `\x -> body`.
type Lambda struct {
	Pos    Pos
	Params []string
	Body   Expr
}

func (l *Lambda) Position() Pos { return l.Pos }
func (l *Lambda) exprNode()     {}

// Apply is function application `f a`.
type Apply struct {
	Pos  Pos
	Fn   Expr
	Args []Expr
}

func (a *Apply) Position() Pos { return a.Pos }
func (a *Apply) exprNode()     {}

// Let is a non-recursive local binding `let x = e1 in e2`.
type Let struct {
	Pos   Pos
	Name  string
	Value Expr
	Body  Expr
}

func (l *Let) Position() Pos { return l.Pos }
func (l *Let) exprNode()     {}

// If is a conditional expression.
type If struct {
	Pos  Pos
	Cond Expr
	Then Expr
	Else Expr
}

func (i *If) Position() Pos { return i.Pos }
func (i *If) exprNode()     {}

// BinOp is a binary operator application, e.g. `a + b`.
type BinOp struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinOp) Position() Pos { return b.Pos }
func (b *BinOp) exprNode()     {}

// QualifiedRef references a name imported from another module, e.g. `List.map`.
type QualifiedRef struct {
	Pos    Pos
	Module string
	Name   string
}

func (q *QualifiedRef) Position() Pos { return q.Pos }
func (q *QualifiedRef) exprNode()     {}
