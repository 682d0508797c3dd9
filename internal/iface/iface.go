// Package iface defines SolvedTypes: the solver's immutable, per-module
// output. It is deliberately modeled as a cheaply-clonable handle rather
// than a value the coordinator copies around — the coordinator is the
// sole long-lived holder, and solver jobs for dependent modules receive
// clones by value, matching a reference-counted handle without needing an
// actual finalizer (Go's GC already reclaims the backing data once the
// last clone is dropped).
package iface

import (
	"fmt"
	"sort"

	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/types"
)

const schemaVersion = "lumen.solved/v1"

// Export is a single exposed symbol's generalized type and its owning
// Symbol, so a dependent module can build a fully-qualified reference
// without re-deriving it.
type Export struct {
	Symbol core.Symbol
	Scheme *types.Scheme
}

// contents is the shared, immutable payload. Once built it is never
// mutated — SolvedTypes clones only copy the pointer, not this struct.
type contents struct {
	Schema   string
	Exports  map[string]*Export
	Poisoned bool
}

// SolvedTypes is an immutable, reference-counted-by-GC snapshot of one
// module's solved substitution, keyed by its exposed symbols. A poisoned
// SolvedTypes represents a module whose solving could not complete (parse
// failure, cycle participant, etc.) but which still needs a value so
// dependents can unblock and terminate.
type SolvedTypes struct {
	c *contents
}

// New builds a SolvedTypes for a successfully solved module.
func New(exports map[string]*Export) SolvedTypes {
	return SolvedTypes{c: &contents{
		Schema:  schemaVersion,
		Exports: exports,
	}}
}

// Poisoned returns an empty, poisoned SolvedTypes for a module that could
// not be solved, letting its dependents still observe a Solved event and
// terminate instead of hanging.
func Poisoned() SolvedTypes {
	return SolvedTypes{c: &contents{Schema: schemaVersion, Exports: map[string]*Export{}, Poisoned: true}}
}

// IsPoisoned reports whether this SolvedTypes stands in for a module that
// failed to solve.
func (s SolvedTypes) IsPoisoned() bool {
	return s.c == nil || s.c.Poisoned
}

// Lookup retrieves the generalized scheme for an exported name.
func (s SolvedTypes) Lookup(name string) (*types.Scheme, bool) {
	if s.c == nil {
		return nil, false
	}
	e, ok := s.c.Exports[name]
	if !ok {
		return nil, false
	}
	return e.Scheme, true
}

// ExportNames returns the exposed names in sorted order, for deterministic
// iteration when building a dependent's scope.
func (s SolvedTypes) ExportNames() []string {
	if s.c == nil {
		return nil
	}
	names := make([]string, 0, len(s.c.Exports))
	for name := range s.c.Exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s SolvedTypes) String() string {
	if s.IsPoisoned() {
		return "<poisoned>"
	}
	return fmt.Sprintf("SolvedTypes(%d exports)", len(s.c.Exports))
}
