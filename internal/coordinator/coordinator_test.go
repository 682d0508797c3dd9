package coordinator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lumen-lang/lumen/internal/assembly"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/stretchr/testify/require"
)

// writeModule writes name.lum (dots become path separators) under dir,
// creating parent directories as needed.
func writeModule(t *testing.T, dir, name, source string) {
	t.Helper()
	path := filepath.Join(append([]string{dir}, splitDots(name)...)...) + ".lum"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
}

func splitDots(name string) []string {
	var parts []string
	cur := ""
	for _, r := range name {
		if r == '.' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	return append(parts, cur)
}

func TestLoadSingleModuleNoImports(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Main.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module Main exposing (main)

main = 42
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.False(t, lm.HasErrors())
	require.False(t, lm.RootSolvedTypes.IsPoisoned())

	scheme, ok := lm.RootSolvedTypes.Lookup("main")
	require.True(t, ok)
	require.NotNil(t, scheme)
}

func TestLoadLinearChain(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "C", `module C exposing (base)

base = 1
`)
	writeModule(t, dir, "B", `module B exposing (mid)

import C

mid = C.base
`)
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (top)

import B

top = B.mid
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.False(t, lm.HasErrors())
	require.False(t, lm.RootSolvedTypes.IsPoisoned())

	_, ok := lm.RootSolvedTypes.Lookup("top")
	require.True(t, ok)
	require.Equal(t, 3, lm.Registry.Len()) // A, B, C
}

func TestLoadDiamondSharesSharedDependency(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "D", `module D exposing (val)

val = 7
`)
	writeModule(t, dir, "B", `module B exposing (fromB)

import D

fromB = D.val
`)
	writeModule(t, dir, "C", `module C exposing (fromC)

import D

fromC = D.val
`)
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (sum)

import B
import C

sum = B.fromB
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.False(t, lm.HasErrors())
	require.False(t, lm.RootSolvedTypes.IsPoisoned())
}

func TestLoadMissingImportIsReportedNotFatal(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (x)

import Missing

x = Missing.y
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.True(t, lm.HasErrors())
	require.True(t, lm.RootSolvedTypes.IsPoisoned())

	var found bool
	for _, p := range lm.Problems {
		if p.Kind == errors.LDR001 {
			found = true
		}
	}
	require.True(t, found, "expected an LDR001 problem for the missing module, got %+v", lm.Problems)
}

func TestLoadParseErrorInLeafPoisonsOnlyThatBranch(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Bad", `module Bad exposing (x)

x = (
`)
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (x)

import Bad

x = Bad.x
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.True(t, lm.HasErrors())
	require.True(t, lm.RootSolvedTypes.IsPoisoned())
}

func TestLoadImportCycleIsReportedAndTerminates(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "B", `module B exposing (fromB)

import A

fromB = A.fromA
`)
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (fromA)

import B

fromA = B.fromB
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.True(t, lm.HasErrors())
	require.True(t, lm.RootSolvedTypes.IsPoisoned())

	var found bool
	for _, p := range lm.Problems {
		if p.Kind == errors.LDR002 {
			found = true
		}
	}
	require.True(t, found, "expected an LDR002 cyclic-import problem, got %+v", lm.Problems)
}

func TestLoadRootFileNotFound(t *testing.T) {
	dir := t.TempDir()
	_, lp := Load(dir, filepath.Join(dir, "NoSuchFile.lum"), nil, nil)
	require.NotNil(t, lp)
	_, ok := lp.(*assembly.FileProblem)
	require.True(t, ok)
}

func TestLoadRootParseErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Main.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module Main exposing (x)

x = (
`), 0o644))

	_, lp := Load(dir, root, nil, nil)
	require.NotNil(t, lp)
	_, ok := lp.(*assembly.ParsingFailed)
	require.True(t, ok)
}

func TestLoadModuleNameMismatchIsWarningNotError(t *testing.T) {
	dir := t.TempDir()
	// File lives at Helper.lum but declares itself "module Wrong".
	writeModule(t, dir, "Helper", `module Wrong exposing (x)

x = 1
`)
	root := filepath.Join(dir, "Main.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module Main exposing (y)

import Helper

y = Helper.x
`), 0o644))

	lm, lp := Load(dir, root, nil, nil)
	require.Nil(t, lp)
	require.False(t, lm.HasErrors())
	require.False(t, lm.RootSolvedTypes.IsPoisoned())

	var found bool
	for _, p := range lm.Problems {
		if p.Kind == errors.MOD001 {
			found = true
		}
	}
	require.True(t, found, "expected an MOD001 mismatch warning, got %+v", lm.Problems)
}

func TestLoadIsDeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "C", `module C exposing (base)

base = 1
`)
	writeModule(t, dir, "B", `module B exposing (mid)

import C

mid = C.base
`)
	root := filepath.Join(dir, "A.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module A exposing (top)

import B

top = B.mid
`), 0o644))

	lm1, lp1 := Load(dir, root, nil, nil)
	require.Nil(t, lp1)
	lm2, lp2 := Load(dir, root, nil, nil)
	require.Nil(t, lp2)

	require.Equal(t, lm1.HasErrors(), lm2.HasErrors())
	if diff := cmp.Diff(lm1.Problems, lm2.Problems); diff != "" {
		t.Errorf("Problems differ across repeated Load calls for the same input (-first +second):\n%s", diff)
	}
	require.Equal(t, lm1.RootSolvedTypes.ExportNames(), lm2.RootSolvedTypes.ExportNames())
}

func TestLoadParallelHonorsExplicitWidth(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Main.lum")
	require.NoError(t, os.WriteFile(root, []byte(`module Main exposing (main)

main = 1
`), 0o644))

	lm, lp := LoadParallel(dir, root, nil, nil, 1)
	require.Nil(t, lp)
	require.False(t, lm.HasErrors())
}

// TestLoadChainsAcrossCallsWithPriorRegistryAndSolved exercises the
// round-trip case priorRegistry/priorSolved exist for: loading Lib once
// standalone, then loading a second root that imports it while seeding
// Lib as already-solved under the same registry. Lib's source file is
// removed before the second Load, proving its worker was never
// dispatched at all — priorSolved fully substitutes for it.
func TestLoadChainsAcrossCallsWithPriorRegistryAndSolved(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Lib", `module Lib exposing (one)

one = 1
`)
	libRoot := filepath.Join(dir, "Lib.lum")
	libLoaded, lp := Load(dir, libRoot, nil, nil)
	require.Nil(t, lp)
	require.False(t, libLoaded.HasErrors())

	require.NoError(t, os.Remove(libRoot))

	root2 := filepath.Join(dir, "Z.lum")
	require.NoError(t, os.WriteFile(root2, []byte(`module Z exposing (z)

import Lib

z = Lib.one
`), 0o644))

	libID := libLoaded.RootModuleID
	priorSolved := map[modid.ID]iface.SolvedTypes{libID: libLoaded.RootSolvedTypes}

	second, lp := Load(dir, root2, libLoaded.Registry, priorSolved)
	require.Nil(t, lp)
	require.False(t, second.HasErrors())
	require.False(t, second.RootSolvedTypes.IsPoisoned())
	require.Same(t, libLoaded.Registry, second.Registry)
}
