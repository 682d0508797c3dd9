package lumenparse

import (
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// ParseBody parses a module's top-level definitions, given the source and
// the State a prior ParseHeader call returned. The header is cheap to
// re-scan (a handful of lines), so ParseBody simply walks past it again
// rather than threading a mid-stream lexer snapshot across the call
// boundary — state is accepted for contract symmetry with the coordinator,
// which always has one on hand from parse_header.
func ParseBody(source, filename string, state *HeaderResult) ([]ast.Def, error) {
	l := lexer.New(source, filename)
	p := newParser(l, filename)

	if err := p.skipPastHeader(); err != nil {
		return nil, err
	}

	var defs []ast.Def
	for !p.curIs(lexer.EOF) {
		def, err := p.parseDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

// skipPastHeader advances p past a module header without re-deriving it;
// the header information itself was already captured by ParseHeader.
func (p *parser) skipPastHeader() error {
	if p.curIs(lexer.MODULE) {
		p.next()
		if err := p.skipDottedName(); err != nil {
			return err
		}
		if p.curIs(lexer.EXPOSING) {
			p.next()
			if err := p.expect(lexer.LPAREN, "'(' after 'exposing'"); err != nil {
				return err
			}
			for !p.curIs(lexer.RPAREN) {
				p.next()
			}
			p.next()
		}
	}
	for p.curIs(lexer.IMPORT) {
		p.next()
		if err := p.skipDottedName(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) skipDottedName() error {
	if err := p.expect(lexer.IDENT, "module name"); err != nil {
		return err
	}
	for p.peekIs(lexer.DOT) {
		p.next()
		if err := p.expectPeek(lexer.IDENT, "identifier after '.'"); err != nil {
			return err
		}
	}
	p.next()
	return nil
}

func (p *parser) parseDef() (*ast.Def, error) {
	if err := p.expect(lexer.IDENT, "definition name"); err != nil {
		return nil, err
	}
	pos := p.pos()
	name := p.curToken.Literal

	var params []string
	for p.peekIs(lexer.IDENT) {
		p.next()
		params = append(params, p.curToken.Literal)
	}

	if err := p.expectPeek(lexer.ASSIGN, "'=' in definition"); err != nil {
		return nil, err
	}
	p.next()

	body, err := p.parseExpr(lowest)
	if err != nil {
		return nil, err
	}
	p.next() // advance past the expression's last token onto the next def (or EOF)

	return &ast.Def{Pos: pos, Name: name, Params: params, Body: body}, nil
}
