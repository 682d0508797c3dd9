package lumenparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaderNameAndExposes(t *testing.T) {
	src := `module Main exposing (main)

main = 1
`
	res, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)
	require.Equal(t, "Main", res.Header.Name)
	require.Equal(t, []string{"main"}, res.Header.Exposes)
	require.Empty(t, res.Header.Imports)
}

func TestParseHeaderWithDottedNameAndImports(t *testing.T) {
	src := `module A.B.C

import Std.List
import Util.Math

value = 1
`
	res, err := ParseHeader(src, "C.lum")
	require.NoError(t, err)
	require.Equal(t, "A.B.C", res.Header.Name)
	require.Len(t, res.Header.Imports, 2)
	require.Equal(t, "Std.List", res.Header.Imports[0].Name)
	require.Equal(t, "Util.Math", res.Header.Imports[1].Name)
}

func TestParseHeaderWithoutModuleDeclaration(t *testing.T) {
	src := `import Std.List

main = 1
`
	res, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)
	require.Empty(t, res.Header.Name)
	require.Len(t, res.Header.Imports, 1)
}

func TestParseHeaderDuplicateImportsPreserved(t *testing.T) {
	src := `import A.B
import A.B

main = 1
`
	res, err := ParseHeader(src, "Main.lum")
	require.NoError(t, err)
	require.Len(t, res.Header.Imports, 2, "the coordinator, not the parser, dedups on the started set")
}

func TestParseHeaderMalformedExposingFails(t *testing.T) {
	src := `module Main exposing (main

main = 1
`
	_, err := ParseHeader(src, "Main.lum")
	require.Error(t, err)
}
