// Package assembly implements ResultAssembly: the coordinator hands it
// every Problem, the root's declarations and its solved types, and it
// produces the single LoadedModule (or LoadingProblem) Load returns.
// Keeping this as its own small package, rather than inlining it into
// coordinator, mirrors the teacher's separation between link.GlobalEnv
// (merging) and loader.ModuleLoader (orchestration) — assembly only ever
// reads coordinator state, it never drives the event loop.
package assembly

import (
	"fmt"
	"sort"

	"github.com/lumen-lang/lumen/internal/bus"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
)

// LoadedModule is the artifact one successful (possibly problem-laden)
// Load call returns: the root module's id, the final registry, its solved
// types, every declaration produced for it, and every Problem gathered
// across the whole transitive graph.
type LoadedModule struct {
	RootModuleID     modid.ID
	Registry         *modid.Registry
	RootSolvedTypes  iface.SolvedTypes
	RootDeclarations []core.Declaration
	Problems         []Problem
}

// Problem is assembly's richer, sorted-friendly view of a bus.Problem: it
// additionally carries the owning module's name, since by the time a
// caller inspects the final report the ModuleId alone is unergonomic.
type Problem struct {
	Kind       string
	Message    string
	ModuleID   modid.ID
	ModuleName modid.ModuleName
}

// HasErrors reports whether any accumulated problem should cause a caller
// to treat the load as failed; every current Problem kind is error
// severity, since spec.md's warning-only module/path name mismatch
// (errors.MOD001) is the one exception, called out here rather than baked
// into every callsite.
func (lm *LoadedModule) HasErrors() bool {
	for _, p := range lm.Problems {
		if p.Kind != errors.MOD001 {
			return true
		}
	}
	return false
}

// LoadingProblem is the sum type for the three infrastructural failures
// that short-circuit Load entirely, per spec.md §7 — distinct from the
// per-module Problems folded into a successful LoadedModule.
type LoadingProblem interface {
	error
	loadingProblem()
}

// FileProblem reports that the root file itself could not be read.
type FileProblem struct {
	Filename string
	IOKind   string
}

func (e *FileProblem) Error() string {
	return fmt.Sprintf("cannot read root file %s: %s", e.Filename, e.IOKind)
}
func (*FileProblem) loadingProblem() {}

// ParsingFailed reports that the root file's header or body failed to parse.
type ParsingFailed struct {
	Filename string
	Fail     error
}

func (e *ParsingFailed) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Filename, e.Fail)
}
func (*ParsingFailed) loadingProblem() {}

// ChannelDied reports that the bus reported itself closed while the event
// loop was still waiting on a terminal Solved(root).
type ChannelDied struct{}

func (*ChannelDied) Error() string   { return "message bus closed before root module was solved" }
func (*ChannelDied) loadingProblem() {}

// Assemble converts the coordinator's final per-module bookkeeping plus
// the accumulated bus Problems into a LoadedModule, resolving each
// Problem's ModuleId to a ModuleName while the registry is still
// reachable (the coordinator reclaims it unshared immediately afterward).
func Assemble(rootID modid.ID, registry *modid.Registry, solved map[modid.ID]iface.SolvedTypes, declarations map[modid.ID][]core.Declaration, problems []bus.Problem) *LoadedModule {
	out := make([]Problem, len(problems))
	for i, p := range problems {
		out[i] = Problem{
			Kind:       p.Kind,
			Message:    p.Message,
			ModuleID:   p.ModuleID,
			ModuleName: registry.NameOf(p.ModuleID),
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ModuleName != out[j].ModuleName {
			return out[i].ModuleName < out[j].ModuleName
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Message < out[j].Message
	})

	return &LoadedModule{
		RootModuleID:     rootID,
		Registry:         registry,
		RootSolvedTypes:  solved[rootID],
		RootDeclarations: declarations[rootID],
		Problems:         out,
	}
}
