package lumenparse

import (
	"strings"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// HeaderResult is ParseHeader's success value: the parsed header plus the
// lexer's byte offset at the point the header parser stopped. ParseBody
// does not resume from State; it re-scans the header itself.
type HeaderResult struct {
	Header ast.Header
	State  int // lexer byte offset when ParseHeader returned (past its lookahead token)
}

// ParseHeader parses only a module's header: its optional `module ...
// exposing (...)` declaration and its `import` lines. It never looks past
// the last import, so the coordinator can discover a module's dependencies
// without paying for a full body parse.
func ParseHeader(source, filename string) (*HeaderResult, error) {
	l := lexer.New(source, filename)
	p := newParser(l, filename)

	var header ast.Header

	if p.curIs(lexer.MODULE) {
		namePos := p.pos()
		p.next()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		header.Name = name
		header.NamePos = namePos

		if p.peekIs(lexer.EXPOSING) {
			p.next()
			if err := p.expectPeek(lexer.LPAREN, "'(' after 'exposing'"); err != nil {
				return nil, err
			}
			exposes, err := p.parseExposeList()
			if err != nil {
				return nil, err
			}
			header.Exposes = exposes
		}
		p.next()
	}

	for p.curIs(lexer.IMPORT) {
		pos := p.pos()
		p.next()
		name, err := p.parseDottedName()
		if err != nil {
			return nil, err
		}
		header.Imports = append(header.Imports, ast.Import{Path: pos, Name: name})
		p.next()
	}

	return &HeaderResult{Header: header, State: p.stateOffset()}, nil
}

// stateOffset returns the lexer's current byte offset. Because the parser
// keeps one token of lookahead, this lies past peekToken, not at the start
// of the body's first token. State is informational only: ParseBody always
// re-lexes the whole source and skips the header again before starting on
// definitions.
func (p *parser) stateOffset() int {
	return p.l.Pos()
}

func (p *parser) parseDottedName() (string, error) {
	if err := p.expect(lexer.IDENT, "module name"); err != nil {
		return "", err
	}
	var parts []string
	parts = append(parts, p.curToken.Literal)
	for p.peekIs(lexer.DOT) {
		p.next() // consume DOT
		if err := p.expectPeek(lexer.IDENT, "identifier after '.'"); err != nil {
			return "", err
		}
		parts = append(parts, p.curToken.Literal)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) parseExposeList() ([]string, error) {
	var names []string
	if p.peekIs(lexer.RPAREN) {
		p.next()
		return names, nil
	}
	for {
		if err := p.expectPeek(lexer.IDENT, "exposed identifier"); err != nil {
			return nil, err
		}
		names = append(names, p.curToken.Literal)
		if p.peekIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	if err := p.expectPeek(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return names, nil
}
