// Package canon implements the canonicalizer and constraint generator: the
// external collaborator that turns a parsed body (an []ast.Def) into the
// core.Module/core.Constraint pair the solver consumes. It resolves every
// identifier to a Symbol, groups mutually recursive definitions, rejects
// cycles that aren't guarded by a lambda, and desugars parameterized defs
// into a single multi-parameter lambda.
package canon

import (
	"fmt"
	"sort"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
)

// Result bundles everything one Canonicalize call hands back to the
// coordinator: the canonicalized module, the name-resolution trace, and
// the constraint tree the solver will walk.
type Result struct {
	Module     *core.Module
	Lookups    *core.Lookups
	Constraint core.Constraint
}

// Canonicalize resolves defs (one source file's top-level bindings)
// against imports (every module name this file's header declared,
// mapped to the ModuleId the coordinator already allocated it) and
// produces the module's canonical IR plus its constraint tree. Lumen has
// no unqualified "import X exposing (y)" form — every cross-module
// reference is written `Module.name` — so resolving one only needs to
// know which ModuleId `Module` names, never what `Module` exports; that
// check happens later, in the solver, against the dependency's actual
// iface.SolvedTypes. vs is passed by pointer; every fresh variable
// Canonicalize allocates comes from it, so the
// coordinator can read back vs.Next() afterward as the NextVar a
// ConstrainedMsg reports.
func Canonicalize(file string, defs []ast.Def, home modid.ID, imports map[string]modid.ID, vs *types.VarStore) (*Result, error) {
	if err := checkDuplicates(file, defs); err != nil {
		return nil, err
	}

	localNames := make(map[string]bool, len(defs))
	for _, d := range defs {
		localNames[d.Name] = true
	}

	defByName := make(map[string]*ast.Def, len(defs))
	typeVarByName := make(map[string]*types.TVar, len(defs))
	ptrs := make([]*ast.Def, len(defs))
	baseEnv := types.NewEnv()
	for i := range defs {
		d := &defs[i]
		ptrs[i] = d
		defByName[d.Name] = d
		tv := vs.Fresh()
		typeVarByName[d.Name] = tv
		baseEnv.Bind(d.Name, types.Mono(tv))
	}

	resolved := map[string]core.Symbol{}
	importRefs := map[string]core.Symbol{}

	coreDefByName := make(map[string]*core.Def, len(defs))
	var defConstraints []core.Constraint
	for _, d := range ptrs {
		body := desugar(d)
		sym := core.Symbol{Module: home, Name: d.Name}
		bodyType, bodyC, err := infer(body, baseEnv, vs, imports, importRefs, resolved)
		if err != nil {
			return nil, err
		}
		tv := typeVarByName[d.Name]
		span := ast.Span{Start: d.Pos, End: d.Pos, File: file}
		coreDefByName[d.Name] = &core.Def{Symbol: sym, Body: body, TypeVar: tv.Name, Span: span}
		defConstraints = append(defConstraints, core.And(bodyC, core.CEq{Left: tv, Right: bodyType, Symbol: sym}))
	}

	selfRec := map[string]bool{}
	for _, d := range ptrs {
		for _, ref := range freeIdents(d.Body, paramSet(d)) {
			if ref == d.Name {
				selfRec[d.Name] = true
			}
		}
	}

	graph := buildCallGraph(ptrs, localNames)
	declarations := groupDeclarations(graph.sccs(), defByName, coreDefByName, selfRec, file)

	exposedImports := map[core.Symbol]*types.TVar{}
	for name, tv := range typeVarByName {
		exposedImports[core.Symbol{Module: home, Name: name}] = tv
	}

	module := &core.Module{
		ID:             home,
		Declarations:   declarations,
		ExposedImports: exposedImports,
		ImportRefs:     importRefs,
	}
	return &Result{
		Module:     module,
		Lookups:    &core.Lookups{Resolved: resolved},
		Constraint: core.And(defConstraints...),
	}, nil
}

func checkDuplicates(file string, defs []ast.Def) error {
	seen := map[string]ast.Pos{}
	for _, d := range defs {
		if prev, ok := seen[d.Name]; ok {
			return errors.WrapReport(errors.New(errors.CAN003, "canonicalize",
				fmt.Sprintf("%q is defined more than once (first at %s)", d.Name, prev)).
				WithModule(file).
				WithSpan(ast.Span{Start: d.Pos, End: d.Pos, File: file}))
		}
		seen[d.Name] = d.Pos
	}
	return nil
}

func paramSet(d *ast.Def) map[string]bool {
	bound := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		bound[p] = true
	}
	return bound
}

// desugar turns `name p1 p2 = body` into the lambda `\p1 p2 -> body` so
// function defs and bare value defs share one representation: a def with no
// params desugars to its own body unchanged.
func desugar(d *ast.Def) ast.Expr {
	if len(d.Params) == 0 {
		return d.Body
	}
	return &ast.Lambda{Pos: d.Pos, Params: d.Params, Body: d.Body}
}

// groupDeclarations turns the SCCs of the module's call graph into
// Value/RecursiveGroup/InvalidCycle declarations. A group is a valid
// recursive group only if every member's desugared body is a lambda: the
// body isn't evaluated until called, so forward references to the other
// members are safe. Anything else — `x = y; y = x` with no intervening
// function — is a genuine cycle with no well-defined value and is reported
// as such rather than silently accepted.
func groupDeclarations(sccs [][]string, defByName map[string]*ast.Def, coreDefByName map[string]*core.Def, selfRec map[string]bool, file string) []core.Declaration {
	type placed struct {
		pos  ast.Pos
		decl core.Declaration
	}
	var out []placed
	for _, group := range sccs {
		sortByAppearance(group, defByName)
		minPos := defByName[group[0]].Pos

		if len(group) == 1 {
			name := group[0]
			if !selfRec[name] {
				out = append(out, placed{minPos, core.Value{Def: coreDefByName[name]}})
				continue
			}
			if _, ok := defByName[name].Body.(*ast.Lambda); ok || len(defByName[name].Params) > 0 {
				out = append(out, placed{minPos, core.RecursiveGroup{Defs: []*core.Def{coreDefByName[name]}}})
			} else {
				out = append(out, placed{minPos, invalidCycle(group, defByName, file)})
			}
			continue
		}
		if allLambdaBodies(group, defByName) {
			defs := make([]*core.Def, len(group))
			for i, name := range group {
				defs[i] = coreDefByName[name]
			}
			out = append(out, placed{minPos, core.RecursiveGroup{Defs: defs}})
		} else {
			out = append(out, placed{minPos, invalidCycle(group, defByName, file)})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].pos.Line != out[j].pos.Line {
			return out[i].pos.Line < out[j].pos.Line
		}
		return out[i].pos.Column < out[j].pos.Column
	})
	decls := make([]core.Declaration, len(out))
	for i, p := range out {
		decls[i] = p.decl
	}
	return decls
}

func allLambdaBodies(group []string, defByName map[string]*ast.Def) bool {
	for _, name := range group {
		d := defByName[name]
		if len(d.Params) == 0 {
			if _, ok := d.Body.(*ast.Lambda); !ok {
				return false
			}
		}
	}
	return true
}

func invalidCycle(group []string, defByName map[string]*ast.Def, file string) core.InvalidCycle {
	idents := append([]string(nil), group...)
	sort.Strings(idents)
	regions := make([]ast.Span, len(idents))
	for i, name := range idents {
		pos := defByName[name].Pos
		regions[i] = ast.Span{Start: pos, End: pos, File: file}
	}
	return core.InvalidCycle{Idents: idents, Regions: regions}
}

// sortByAppearance orders an SCC's members by their position in the
// original def list so the resulting declaration order is deterministic
// and matches source order rather than Tarjan's internal traversal order.
func sortByAppearance(group []string, defByName map[string]*ast.Def) {
	sort.Slice(group, func(i, j int) bool {
		pi, pj := defByName[group[i]].Pos, defByName[group[j]].Pos
		if pi.Line != pj.Line {
			return pi.Line < pj.Line
		}
		return pi.Column < pj.Column
	})
}
