// Package lumenparse implements the HeaderParser and BodyParser external
// collaborators the coordinator calls through: splitting a source file's
// header (module name, imports, exposes) from its definitions so the
// coordinator can discover imports without paying for a full body parse.
package lumenparse

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/lexer"
)

// ParseFail is returned by ParseHeader/ParseBody on a syntax error. It
// carries enough to build a Problem without the caller re-deriving
// position information from a bare error string.
type ParseFail struct {
	Message string
	Pos     ast.Pos
	Near    lexer.Token
}

func (e *ParseFail) Error() string {
	return fmt.Sprintf("parse error at %s: %s (near %q)", e.Pos, e.Message, e.Near.Literal)
}

func fail(pos ast.Pos, near lexer.Token, format string, args ...any) *ParseFail {
	return &ParseFail{Message: fmt.Sprintf(format, args...), Pos: pos, Near: near}
}
