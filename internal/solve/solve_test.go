package solve

import (
	"testing"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/canon"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
	"github.com/stretchr/testify/require"
)

func TestSolveSimpleValueInfersInt(t *testing.T) {
	defs := []ast.Def{
		{Name: "answer", Body: &ast.Lit{Kind: ast.IntLit, Int: 42}},
	}
	vs := types.NewVarStore(0)
	res, err := canon.Canonicalize("M.lum", defs, modid.ID(1), map[string]modid.ID{}, vs)
	require.NoError(t, err)

	solved, problems := Solve(res.Module, res.Constraint, vs.Next(), nil, nil)
	require.Empty(t, problems)
	require.False(t, solved.IsPoisoned())

	scheme, ok := solved.Lookup("answer")
	require.True(t, ok)
	require.Equal(t, "Int", scheme.Type.String())
}

func TestSolveIdentityIsGeneralized(t *testing.T) {
	defs := []ast.Def{
		{Name: "identity", Params: []string{"x"}, Body: &ast.Ident{Name: "x"}},
	}
	vs := types.NewVarStore(0)
	res, err := canon.Canonicalize("M.lum", defs, modid.ID(1), map[string]modid.ID{}, vs)
	require.NoError(t, err)

	solved, problems := Solve(res.Module, res.Constraint, vs.Next(), nil, nil)
	require.Empty(t, problems)
	scheme, ok := solved.Lookup("identity")
	require.True(t, ok)
	require.NotEmpty(t, scheme.TypeVars, "identity's parameter type should be generalized")
}

func TestSolveTypeMismatchProducesProblem(t *testing.T) {
	// broken = 1 + true
	defs := []ast.Def{
		{Name: "broken", Body: &ast.BinOp{Op: "+", Left: &ast.Lit{Kind: ast.IntLit, Int: 1}, Right: &ast.Lit{Kind: ast.BoolLit, Bool: true}}},
	}
	vs := types.NewVarStore(0)
	res, err := canon.Canonicalize("M.lum", defs, modid.ID(1), map[string]modid.ID{}, vs)
	require.NoError(t, err)

	solved, problems := Solve(res.Module, res.Constraint, vs.Next(), nil, nil)
	require.NotEmpty(t, problems)
	require.True(t, solved.IsPoisoned())
}

func TestSolveCrossModuleReferenceInstantiatesDependencyScheme(t *testing.T) {
	listModule := modid.ID(2)
	depExports := map[string]*iface.Export{
		"head": {
			Symbol: core.Symbol{Module: listModule, Name: "head"},
			Scheme: &types.Scheme{TypeVars: []string{"a"}, Type: &types.TFunc{
				Params: []types.Type{&types.TVar{Name: "a"}},
				Return: &types.TVar{Name: "a"},
			}},
		},
	}
	deps := map[modid.ID]iface.SolvedTypes{listModule: iface.New(depExports)}

	imports := map[string]modid.ID{"List": listModule}
	defs := []ast.Def{
		{Name: "firstInt", Body: &ast.Apply{Fn: &ast.QualifiedRef{Module: "List", Name: "head"}, Args: []ast.Expr{&ast.Lit{Kind: ast.IntLit, Int: 1}}}},
	}
	vs := types.NewVarStore(0)
	res, err := canon.Canonicalize("M.lum", defs, modid.ID(1), imports, vs)
	require.NoError(t, err)

	solved, problems := Solve(res.Module, res.Constraint, vs.Next(), nil, deps)
	require.Empty(t, problems)
	require.False(t, solved.IsPoisoned())

	scheme, ok := solved.Lookup("firstInt")
	require.True(t, ok)
	require.Equal(t, "Int", scheme.Type.String())
}

func TestSolveExposesRestrictsExports(t *testing.T) {
	defs := []ast.Def{
		{Name: "pub", Body: &ast.Lit{Kind: ast.IntLit, Int: 1}},
		{Name: "priv", Body: &ast.Lit{Kind: ast.IntLit, Int: 2}},
	}
	vs := types.NewVarStore(0)
	res, err := canon.Canonicalize("M.lum", defs, modid.ID(1), map[string]modid.ID{}, vs)
	require.NoError(t, err)

	solved, problems := Solve(res.Module, res.Constraint, vs.Next(), []string{"pub"}, nil)
	require.Empty(t, problems)
	require.Equal(t, []string{"pub"}, solved.ExportNames())
}
