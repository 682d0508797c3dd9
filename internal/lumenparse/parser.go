package lumenparse

import (
	"strconv"
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// precedence levels, lowest to highest.
const (
	lowest int = iota
	equals
	relational
	sum
	product
	prefixPrec
	call
)

var precedences = map[lexer.Type]int{
	lexer.EQ:    equals,
	lexer.LT:    relational,
	lexer.GT:    relational,
	lexer.PLUS:  sum,
	lexer.MINUS: sum,
	lexer.STAR:  product,
	lexer.SLASH: product,
}

// parser is the shared recursive-descent/Pratt core both the header and
// body parsers drive. It never looks past curToken/peekToken.
type parser struct {
	l    *lexer.Lexer
	file string

	curToken  lexer.Token
	peekToken lexer.Token
}

func newParser(l *lexer.Lexer, file string) *parser {
	p := &parser{l: l, file: file}
	p.next()
	p.next()
	return p
}

func (p *parser) next() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) curIs(t lexer.Type) bool  { return p.curToken.Type == t }
func (p *parser) peekIs(t lexer.Type) bool { return p.peekToken.Type == t }

func (p *parser) pos() ast.Pos {
	return ast.Pos{Line: p.curToken.Line, Column: p.curToken.Column}
}

func (p *parser) expect(t lexer.Type, what string) error {
	if !p.curIs(t) {
		return fail(p.pos(), p.curToken, "expected %s", what)
	}
	return nil
}

func (p *parser) expectPeek(t lexer.Type, what string) error {
	if !p.peekIs(t) {
		return fail(ast.Pos{Line: p.peekToken.Line, Column: p.peekToken.Column}, p.peekToken, "expected %s", what)
	}
	p.next()
	return nil
}

func (p *parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return lowest
}

// parseExpr parses an expression at the given minimum precedence, using
// Pratt-style prefix dispatch followed by a precedence-climbing infix loop.
// Juxtaposition application binds tighter than any operator, so it is
// gathered immediately around each operand before the operator loop ever
// compares precedences.
func (p *parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseApplication()
	if err != nil {
		return nil, err
	}

	for minPrec < p.peekPrecedence() {
		op := p.peekToken
		p.next() // curToken now the operator
		p.next() // curToken now the first token of the right operand
		right, err := p.parseExpr(precedences[op.Type])
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{Pos: left.Position(), Op: op.Literal, Left: left, Right: right}
	}

	return left, nil
}

// parseApplication parses a primary expression followed by zero or more
// juxtaposed argument atoms: `f a b` becomes one Apply with two args.
func (p *parser) parseApplication() (ast.Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for p.startsAtom() {
		arg, err := p.parseAtomForApply()
		if err != nil {
			return nil, err
		}
		if apply, ok := left.(*ast.Apply); ok {
			apply.Args = append(apply.Args, arg)
		} else {
			left = &ast.Apply{Pos: left.Position(), Fn: left, Args: []ast.Expr{arg}}
		}
	}

	return left, nil
}

// startsAtom reports whether the current lookahead token could begin a
// bare application argument (used to decide whether `f x` is a call). A
// token in column 1 of a later line starts the next top-level definition,
// so it never continues the current application.
func (p *parser) startsAtom() bool {
	if p.peekToken.Column == 1 && p.peekToken.Line > p.curToken.Line {
		return false
	}
	switch p.peekToken.Type {
	case lexer.IDENT, lexer.INT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.LPAREN:
		return true
	default:
		return false
	}
}

func (p *parser) parseAtomForApply() (ast.Expr, error) {
	p.next()
	return p.parsePrefix()
}

func (p *parser) parsePrefix() (ast.Expr, error) {
	switch p.curToken.Type {
	case lexer.IDENT:
		return p.parseIdentOrQualified()
	case lexer.INT:
		return p.parseInt()
	case lexer.STRING:
		str := &ast.Lit{Pos: p.pos(), Kind: ast.StringLit, Str: p.curToken.Literal}
		return str, nil
	case lexer.TRUE, lexer.FALSE:
		return &ast.Lit{Pos: p.pos(), Kind: ast.BoolLit, Bool: p.curToken.Type == lexer.TRUE}, nil
	case lexer.LPAREN:
		return p.parseParens()
	case lexer.BACKSLASH:
		return p.parseLambda()
	case lexer.LET:
		return p.parseLet()
	case lexer.IF:
		return p.parseIf()
	default:
		return nil, fail(p.pos(), p.curToken, "unexpected token %q", p.curToken.Literal)
	}
}

func (p *parser) parseIdentOrQualified() (ast.Expr, error) {
	pos := p.pos()
	if !p.peekIs(lexer.DOT) {
		return &ast.Ident{Pos: pos, Name: p.curToken.Literal}, nil
	}

	// A.B.C.name: every segment but the last is the module qualifier, so
	// a reference into a deeply nested module still resolves to one
	// QualifiedRef rather than a chain of field accesses.
	segments := []string{p.curToken.Literal}
	for p.peekIs(lexer.DOT) {
		p.next() // consume the previous segment, land on DOT
		if err := p.expectPeek(lexer.IDENT, "identifier after '.'"); err != nil {
			return nil, err
		}
		segments = append(segments, p.curToken.Literal)
	}

	last := len(segments) - 1
	return &ast.QualifiedRef{
		Pos:    pos,
		Module: strings.Join(segments[:last], "."),
		Name:   segments[last],
	}, nil
}

func (p *parser) parseInt() (ast.Expr, error) {
	pos := p.pos()
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		return nil, fail(pos, p.curToken, "invalid integer literal %q", p.curToken.Literal)
	}
	return &ast.Lit{Pos: pos, Kind: ast.IntLit, Int: v}, nil
}

func (p *parser) parseParens() (ast.Expr, error) {
	p.next() // consume '('
	inner, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *parser) parseLambda() (ast.Expr, error) {
	pos := p.pos()
	var params []string
	for p.peekIs(lexer.IDENT) {
		p.next()
		params = append(params, p.curToken.Literal)
	}
	if len(params) == 0 {
		return nil, fail(p.pos(), p.curToken, "lambda requires at least one parameter")
	}
	if err := p.expectPeek(lexer.ARROW, "'->'"); err != nil {
		return nil, err
	}
	p.next()
	body, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{Pos: pos, Params: params, Body: body}, nil
}

func (p *parser) parseLet() (ast.Expr, error) {
	pos := p.pos()
	if err := p.expectPeek(lexer.IDENT, "identifier after 'let'"); err != nil {
		return nil, err
	}
	name := p.curToken.Literal
	if err := p.expectPeek(lexer.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	p.next()
	value, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.IN, "'in'"); err != nil {
		return nil, err
	}
	p.next()
	body, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.Let{Pos: pos, Name: name, Value: value, Body: body}, nil
}

func (p *parser) parseIf() (ast.Expr, error) {
	pos := p.pos()
	p.next()
	cond, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.THEN, "'then'"); err != nil {
		return nil, err
	}
	p.next()
	thenExpr, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.ELSE, "'else'"); err != nil {
		return nil, err
	}
	p.next()
	elseExpr, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.If{Pos: pos, Cond: cond, Then: thenExpr, Else: elseExpr}, nil
}
