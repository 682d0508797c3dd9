// Package solve implements the solver: the external collaborator that
// walks a module's core.Constraint tree, threads a single
// types.Substitution through it, and turns the result into the
// iface.SolvedTypes the coordinator hands to whichever modules import this
// one. It is the one stage that needs every dependency already solved,
// since a foreign reference's type comes from the dependency's own
// iface.SolvedTypes rather than from anything in this module's own
// constraint tree.
package solve

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/bus"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
)

// Solve resolves module's constraint against its already-solved
// dependencies (keyed by modid.ID, as the coordinator tracks them) and
// returns the exported types visible to importers. exposes restricts which
// top-level names are included in the result; an empty slice exports
// everything, matching a header with no `exposing (...)` clause.
//
// Solve never returns an error: a type mismatch, an occurs-check failure
// or a reference to a name a dependency doesn't export is a Problem, not a
// Go error, since the coordinator's contract is to keep loading the rest
// of the graph and report every problem it finds in one pass. Any of these
// marks the whole module poisoned — a conservative choice documented
// alongside the other solver simplifications in the project's design
// notes, since a module partially-typechecked by a solver this size isn't
// worth the complexity of tracking which declarations survived.
func Solve(module *core.Module, constraint core.Constraint, nextVar int, exposes []string, deps map[modid.ID]iface.SolvedTypes) (iface.SolvedTypes, []bus.Problem) {
	vs := types.NewVarStore(nextVar)
	var problems []bus.Problem
	poisoned := false

	sub := types.Substitution{}
	for varName, sym := range module.ImportRefs {
		depSolved, ok := deps[sym.Module]
		if !ok {
			panic(fmt.Sprintf("solve: dependency module %s not in solved set for %s — coordinator dispatched before its deps were ready", sym.Module, sym))
		}
		scheme, ok := depSolved.Lookup(sym.Name)
		if !ok {
			problems = append(problems, bus.Problem{
				Kind:     errors.TC003,
				Message:  fmt.Sprintf("%s does not export %q", sym.Module, sym.Name),
				ModuleID: module.ID,
			})
			poisoned = true
			continue
		}
		sub[varName] = types.Instantiate(scheme, func() string { return vs.Fresh().Name })
	}

	sub, eqProblems := solveConstraint(constraint, sub, module.ID)
	if len(eqProblems) > 0 {
		problems = append(problems, eqProblems...)
		poisoned = true
	}

	exports := map[string]*iface.Export{}
	wanted := exposeSet(exposes)
	for _, decl := range module.Declarations {
		switch d := decl.(type) {
		case core.Value:
			addExport(exports, d.Def, sub, wanted)
		case core.RecursiveGroup:
			for _, def := range d.Defs {
				addExport(exports, def, sub, wanted)
			}
		case core.InvalidCycle:
			problems = append(problems, bus.Problem{
				Kind:     errors.CAN002,
				Message:  fmt.Sprintf("%v form an invalid recursive cycle", d.Idents),
				ModuleID: module.ID,
			})
			poisoned = true
		}
	}

	if poisoned {
		return iface.Poisoned(), problems
	}
	return iface.New(exports), problems
}

func exposeSet(exposes []string) map[string]bool {
	if len(exposes) == 0 {
		return nil // nil means "no restriction" to addExport
	}
	set := make(map[string]bool, len(exposes))
	for _, name := range exposes {
		set[name] = true
	}
	return set
}

func addExport(exports map[string]*iface.Export, def *core.Def, sub types.Substitution, wanted map[string]bool) {
	if wanted != nil && !wanted[def.Symbol.Name] {
		return
	}
	ty := (&types.TVar{Name: def.TypeVar}).Substitute(sub)
	scheme := types.Generalize(map[string]bool{}, ty)
	exports[def.Symbol.Name] = &iface.Export{Symbol: def.Symbol, Scheme: scheme}
}

// solveConstraint walks c, threading sub. A unify failure is recorded as a
// Problem and that equation is skipped rather than aborting the whole
// walk, so one bad equation doesn't hide every other error in the module.
func solveConstraint(c core.Constraint, sub types.Substitution, moduleID modid.ID) (types.Substitution, []bus.Problem) {
	switch n := c.(type) {
	case core.Empty:
		return sub, nil

	case core.CEq:
		next, err := types.Unify(n.Left, n.Right, sub)
		if err != nil {
			return sub, []bus.Problem{{
				Kind:     errors.TC001,
				Message:  err.Error(),
				ModuleID: moduleID,
			}}
		}
		return next, nil

	case core.CAnd:
		var problems []bus.Problem
		for _, m := range n.Members {
			var ps []bus.Problem
			sub, ps = solveConstraint(m, sub, moduleID)
			problems = append(problems, ps...)
		}
		return sub, problems

	default:
		panic(fmt.Sprintf("solve: unknown constraint node %T", c))
	}
}
