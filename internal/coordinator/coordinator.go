// Package coordinator implements the module loader and type-checking
// coordinator: the state machine that discovers a module graph lazily by
// parsing headers, fans out parsing/canonicalization across a worker
// pool, gates constraint-solving on each module's dependencies being
// already solved, and terminates when the root module reaches SOLVED.
//
// The coordinator itself is single-threaded: all of the maps in the
// coordinator struct are touched only from the goroutine running
// eventLoop. Everything else — file reads, parsing, canonicalizing,
// solving — happens on workerpool goroutines that talk back only through
// the bus, exactly the division of labor internal/bus's package doc
// describes.
package coordinator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lumen-lang/lumen/internal/assembly"
	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/bus"
	"github.com/lumen-lang/lumen/internal/canon"
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/fsresolve"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/lexer"
	"github.com/lumen-lang/lumen/internal/lumenparse"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
	"github.com/lumen-lang/lumen/internal/workerpool"
)

// defaultParallelism bounds worker concurrency when a caller doesn't
// override it via LoadParallel; internal/config's manifest layer is
// expected to be the usual source of a non-default value.
const defaultParallelism = 8

// pendingModule is what Constrained stashes until every dependency of the
// module it describes has reached solved.
type pendingModule struct {
	module     *core.Module
	constraint core.Constraint
	nextVar    int
	exposes    []string
}

// coordinator owns all of the mutable scheduling state the spec's data
// model calls out in §3. Every field here is read and written exclusively
// from the goroutine running eventLoop.
type coordinator struct {
	registry *modid.Registry
	handle   modid.Handle
	resolver *fsresolve.Resolver
	b        *bus.Bus
	pool     *workerpool.Pool

	started      map[modid.ModuleName]bool
	deps         map[modid.ID][]modid.ModuleName
	declarations map[modid.ID][]core.Declaration
	pendingSolve map[modid.ID]*pendingModule
	solved       map[modid.ID]iface.SolvedTypes
	problems     []bus.Problem

	// importedBy records, for every non-root module, the name of whichever
	// module first named it as a dependency — enough to reconstruct an
	// import chain for a FileNotFound/IOError problem's message, the way
	// the original loader's resolution trace does.
	importedBy map[modid.ModuleName]modid.ModuleName
}

// Load runs one full `load` call: it discovers, parses, canonicalizes and
// solves the root file at rootFilename and its transitive imports under
// srcDir, returning the assembled LoadedModule or a fatal LoadingProblem.
//
// priorRegistry lets a caller chain successive Load calls against a
// stable set of ModuleIds — necessary for priorSolved to mean anything,
// since a fresh registry would allocate different ids for the same
// names. Pass nil to start a brand-new registry, and a nil priorSolved if
// there is nothing to seed.
func Load(srcDir, rootFilename string, priorRegistry *modid.Registry, priorSolved map[modid.ID]iface.SolvedTypes) (*assembly.LoadedModule, assembly.LoadingProblem) {
	return LoadParallel(srcDir, rootFilename, priorRegistry, priorSolved, defaultParallelism)
}

// LoadParallel is Load with an explicit worker-pool width.
func LoadParallel(srcDir, rootFilename string, priorRegistry *modid.Registry, priorSolved map[modid.ID]iface.SolvedTypes, parallelism int) (*assembly.LoadedModule, assembly.LoadingProblem) {
	return run(fsresolve.New(srcDir), rootFilename, priorRegistry, priorSolved, parallelism)
}

// LoadWithStdlib is Load, but resolves a dependency under stdlibDir
// whenever srcDir doesn't have it — the coordinator-level entry point
// internal/config's StdlibDir setting (LUMEN_STDLIB) ultimately drives.
func LoadWithStdlib(srcDir, stdlibDir, rootFilename string, priorRegistry *modid.Registry, priorSolved map[modid.ID]iface.SolvedTypes, parallelism int) (*assembly.LoadedModule, assembly.LoadingProblem) {
	return run(fsresolve.NewWithStdlib(srcDir, stdlibDir), rootFilename, priorRegistry, priorSolved, parallelism)
}

func run(resolver *fsresolve.Resolver, rootFilename string, priorRegistry *modid.Registry, priorSolved map[modid.ID]iface.SolvedTypes, parallelism int) (*assembly.LoadedModule, assembly.LoadingProblem) {
	registry := priorRegistry
	if registry == nil {
		registry = modid.New()
	}

	c := &coordinator{
		registry:     registry,
		resolver:     resolver,
		b:            bus.New(),
		started:      map[modid.ModuleName]bool{},
		deps:         map[modid.ID][]modid.ModuleName{},
		declarations: map[modid.ID][]core.Declaration{},
		pendingSolve: map[modid.ID]*pendingModule{},
		solved:       map[modid.ID]iface.SolvedTypes{},
		importedBy:   map[modid.ModuleName]modid.ModuleName{},
	}
	for id, st := range priorSolved {
		c.solved[id] = st
		c.started[registry.NameOf(id)] = true
	}

	rootID, lp := c.primeRoot(rootFilename)
	if lp != nil {
		return nil, lp
	}

	// The root-loading phase above owned the registry exclusively; from
	// here on every dependency is discovered and processed concurrently,
	// so the registry is promoted to shared mode exactly once, per
	// spec.md §4.1's exclusive-then-shared lifecycle.
	c.handle = registry.Share()
	c.pool = workerpool.New(context.Background(), parallelism)

	return c.eventLoop(rootID)
}

// primeRoot loads the root file inline, ahead of any worker dispatch, so
// the event loop never starts with an empty bus. It allocates the root's
// own ModuleId and its immediate dependencies' ids while the registry is
// still exclusively owned, sends the root's DepsRequested, then
// canonicalizes the root body directly — also inline, since there is no
// concurrency to race against yet — and stashes the result the same way
// an incoming Constrained event would.
func (c *coordinator) primeRoot(rootFilename string) (modid.ID, assembly.LoadingProblem) {
	data, err := os.ReadFile(rootFilename)
	if err != nil {
		kind := "i/o error"
		if os.IsNotExist(err) {
			kind = "not found"
		}
		return 0, &assembly.FileProblem{Filename: rootFilename, IOKind: kind}
	}
	source := string(lexer.Normalize(data))

	headerRes, err := lumenparse.ParseHeader(source, rootFilename)
	if err != nil {
		return 0, &assembly.ParsingFailed{Filename: rootFilename, Fail: err}
	}

	rootName := modid.ModuleName(headerRes.Header.Name)
	if rootName == "" {
		base := filepath.Base(rootFilename)
		rootName = modid.ModuleName(strings.TrimSuffix(base, fsresolve.SourceExt))
	}
	rootID := c.registry.GetOrCreateID(rootName)
	c.started[rootName] = true

	depNames := dedupedImportNames(headerRes.Header.Imports)
	imports := make(map[string]modid.ID, len(depNames))
	for _, name := range depNames {
		imports[string(name)] = c.registry.GetOrCreateID(name)
	}
	c.deps[rootID] = depNames
	c.b.Sender().SendDepsRequested(rootID, depNames)

	defs, err := lumenparse.ParseBody(source, rootFilename, headerRes)
	if err != nil {
		return 0, &assembly.ParsingFailed{Filename: rootFilename, Fail: err}
	}

	vs := types.NewVarStore(0)
	result, err := canon.Canonicalize(rootFilename, defs, rootID, imports, vs)
	if err != nil {
		return 0, &assembly.ParsingFailed{Filename: rootFilename, Fail: err}
	}

	c.declarations[rootID] = result.Module.Declarations
	c.pendingSolve[rootID] = &pendingModule{
		module:     result.Module,
		constraint: result.Constraint,
		nextVar:    vs.Next(),
		exposes:    headerRes.Header.Exposes,
	}

	return rootID, nil
}

// dedupedImportNames returns each header import's dotted name once, in
// first-occurrence order, matching spec.md §4.5's "duplicate imports are
// treated as one" tie-break.
func dedupedImportNames(imports []ast.Import) []modid.ModuleName {
	seen := map[string]bool{}
	var out []modid.ModuleName
	for _, imp := range imports {
		if seen[imp.Name] {
			continue
		}
		seen[imp.Name] = true
		out = append(out, modid.ModuleName(imp.Name))
	}
	return out
}
