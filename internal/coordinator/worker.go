package coordinator

import (
	"context"
	"fmt"

	"github.com/lumen-lang/lumen/internal/bus"
	"github.com/lumen-lang/lumen/internal/canon"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/fsresolve"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/lumenparse"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/solve"
	"github.com/lumen-lang/lumen/internal/types"
)

// dispatchModule submits the header-parse → body-parse → canonicalize
// pipeline for one not-yet-started dependency module to the worker pool.
// It clones the shared registry handle for the job's exclusive use and
// drops it on completion, so Reclaim sees the handle count return to zero
// once every in-flight job has finished.
func (c *coordinator) dispatchModule(id modid.ID, name modid.ModuleName) {
	h := c.handle.Clone()
	c.pool.Submit(func(ctx context.Context) error {
		defer h.Drop()
		c.processModule(h, id, name)
		return nil
	})
}

// processModule runs entirely on a worker goroutine and communicates back
// to the coordinator only through bus sends — it must never touch
// coordinator state directly.
func (c *coordinator) processModule(h modid.Handle, id modid.ID, name modid.ModuleName) {
	sender := c.b.Sender()

	data, path, err := c.resolver.Read(name)
	if err != nil {
		code := errors.LDR003
		if _, ok := err.(*fsresolve.NotFoundError); ok {
			code = errors.LDR001
		}
		sender.SendSolved(id, iface.Poisoned(), []bus.Problem{{Kind: code, Message: err.Error(), ModuleID: id}})
		return
	}
	source := string(lexer.Normalize(data))

	headerRes, err := lumenparse.ParseHeader(source, path)
	if err != nil {
		sender.SendSolved(id, iface.Poisoned(), []bus.Problem{{Kind: errors.PAR003, Message: err.Error(), ModuleID: id}})
		return
	}

	var extra []bus.Problem
	if headerRes.Header.Name != "" && headerRes.Header.Name != string(name) {
		extra = append(extra, bus.Problem{
			Kind:     errors.MOD001,
			Message:  fmt.Sprintf("header declares module %q but was imported as %q", headerRes.Header.Name, name),
			ModuleID: id,
		})
	}
	exposes, dupProblems := dedupeExposes(headerRes.Header.Exposes, id)
	extra = append(extra, dupProblems...)

	depNames := dedupedImportNames(headerRes.Header.Imports)
	imports := make(map[string]modid.ID, len(depNames))
	for _, depName := range depNames {
		imports[string(depName)] = h.GetOrCreateID(depName)
	}
	sender.SendDepsRequested(id, depNames)

	defs, err := lumenparse.ParseBody(source, path, headerRes)
	if err != nil {
		problems := append(extra, bus.Problem{Kind: errors.PAR001, Message: err.Error(), ModuleID: id})
		sender.SendSolved(id, iface.Poisoned(), problems)
		return
	}

	vs := types.NewVarStore(0)
	result, err := canon.Canonicalize(path, defs, id, imports, vs)
	if err != nil {
		problems := append(extra, canonErrorToProblem(err, id))
		sender.SendSolved(id, iface.Poisoned(), problems)
		return
	}

	sender.SendConstrained(result.Module, result.Constraint, vs.Next(), exposes, extra)
}

// dispatchSolve submits a solve job for a module whose dependencies are
// now all present in c.solved. The snapshot of dependency SolvedTypes is
// built on the coordinator goroutine, before the job is handed off, since
// c.solved itself must never be read concurrently.
func (c *coordinator) dispatchSolve(id modid.ID, pm *pendingModule) {
	depsSolved := make(map[modid.ID]iface.SolvedTypes, len(c.deps[id]))
	for _, name := range c.deps[id] {
		depID := c.registry.GetOrCreateID(name)
		depsSolved[depID] = c.solved[depID]
	}

	h := c.handle.Clone()
	sender := c.b.Sender()
	c.pool.Submit(func(ctx context.Context) error {
		defer h.Drop()
		solvedTypes, problems := solve.Solve(pm.module, pm.constraint, pm.nextVar, pm.exposes, depsSolved)
		sender.SendSolved(id, solvedTypes, problems)
		return nil
	})
}

// dedupeExposes drops repeated names from a header's exposing(...) list,
// reporting each repeat as a non-fatal problem (the original loader's
// source guards against this even though spec.md doesn't call it out
// directly — see SPEC_FULL.md's supplemented-features section).
func dedupeExposes(exposes []string, id modid.ID) ([]string, []bus.Problem) {
	seen := make(map[string]bool, len(exposes))
	var out []string
	var problems []bus.Problem
	for _, name := range exposes {
		if seen[name] {
			problems = append(problems, bus.Problem{
				Kind:     errors.MOD002,
				Message:  fmt.Sprintf("%q is exposed more than once", name),
				ModuleID: id,
			})
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, problems
}

// canonErrorToProblem unwraps a *errors.Report carried by a canonicalizer
// error into a bus.Problem; any other error shape (shouldn't occur, since
// canon only ever returns WrapReport-wrapped Reports) falls back to a
// generic CAN001.
func canonErrorToProblem(err error, id modid.ID) bus.Problem {
	if rep, ok := errors.AsReport(err); ok {
		return bus.Problem{Kind: rep.Code, Message: rep.Message, ModuleID: id}
	}
	return bus.Problem{Kind: errors.CAN001, Message: err.Error(), ModuleID: id}
}
