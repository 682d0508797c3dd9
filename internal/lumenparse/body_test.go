package lumenparse

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestParseBodySimpleDef(t *testing.T) {
	src := `module Main exposing (main)

main = 42
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	defs, err := ParseBody(src, "Main.lum", header)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, "main", defs[0].Name)

	lit, ok := defs[0].Body.(*ast.Lit)
	require.True(t, ok)
	require.Equal(t, ast.IntLit, lit.Kind)
	require.EqualValues(t, 42, lit.Int)
}

func TestParseBodyLambdaAndApply(t *testing.T) {
	src := `module Main exposing (main)

identity = \x -> x

main = identity 1
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	defs, err := ParseBody(src, "Main.lum", header)
	require.NoError(t, err)
	require.Len(t, defs, 2)

	lam, ok := defs[0].Body.(*ast.Lambda)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, lam.Params)

	apply, ok := defs[1].Body.(*ast.Apply)
	require.True(t, ok)
	ident, ok := apply.Fn.(*ast.Ident)
	require.True(t, ok)
	require.Equal(t, "identity", ident.Name)
	require.Len(t, apply.Args, 1)
}

func TestParseBodyLetAndIf(t *testing.T) {
	src := `main = let x = 1 in if x then 2 else 3
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	defs, err := ParseBody(src, "Main.lum", header)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	let, ok := defs[0].Body.(*ast.Let)
	require.True(t, ok)
	require.Equal(t, "x", let.Name)

	_, ok = let.Body.(*ast.If)
	require.True(t, ok)
}

func TestParseBodyQualifiedReference(t *testing.T) {
	src := `module Main exposing (main)

import Std.List

main = Std.List.head
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	defs, err := ParseBody(src, "Main.lum", header)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	// "Std.List.head" lexes as Std . List . head; every segment but the
	// last is the module qualifier, so the parsed shape is a QualifiedRef
	// with Module "Std.List" and Name "head".
	_, ok := defs[0].Body.(*ast.QualifiedRef)
	require.True(t, ok)
}

func TestParseBodyFunctionWithParams(t *testing.T) {
	src := `add a b = a + b
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	defs, err := ParseBody(src, "Main.lum", header)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	require.Equal(t, []string{"a", "b"}, defs[0].Params)

	binop, ok := defs[0].Body.(*ast.BinOp)
	require.True(t, ok)
	require.Equal(t, "+", binop.Op)
}

func TestParseBodySyntaxErrorReturnsParseFail(t *testing.T) {
	src := `broken = (1 +
`
	header, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)

	_, err = ParseBody(src, "Main.lum", header)
	require.Error(t, err)

	var pf *ParseFail
	require.ErrorAs(t, err, &pf)
}
