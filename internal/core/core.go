// Package core defines the canonicalized intermediate representation that
// sits between parsing and type solving: symbols, declarations and the
// per-module shape the canonicalizer produces and the constrainer
// consumes. It is intentionally thin — name resolution, desugaring and
// constraint generation themselves are external collaborators (see
// internal/canon) — but the shapes they hand back to the coordinator live
// here so both sides share one vocabulary.
package core

import (
	"fmt"

	"github.com/lumen-lang/lumen/internal/ast"
	"github.com/lumen-lang/lumen/internal/modid"
	"github.com/lumen-lang/lumen/internal/types"
)

// Symbol globally identifies a value binding, qualified by the module that
// defines it.
type Symbol struct {
	Module modid.ID
	Name   string
}

func (s Symbol) String() string {
	return fmt.Sprintf("%s/%s", s.Module, s.Name)
}

// Def is a single binding: the symbol it introduces, its canonicalized
// body, and the type variable the solver will assign its type to. A
// RecursiveGroup carries one Def per mutually-recursive member.
type Def struct {
	Symbol   Symbol
	Body     ast.Expr
	TypeVar  string
	Span     ast.Span
}

// Declaration is a tagged variant over the three shapes a top-level
// binding can take once canonicalized.
type Declaration interface {
	declaration()
}

// Value is a single, non-recursive top-level binding.
type Value struct {
	Def *Def
}

func (Value) declaration() {}

// RecursiveGroup is a set of mutually-recursive bindings (e.g. two
// functions that call each other). All members are generalized together.
type RecursiveGroup struct {
	Defs []*Def
}

func (RecursiveGroup) declaration() {}

// InvalidCycle marks a binding-group cycle that is not a valid recursive
// function group (e.g. `x = y` and `y = x` with no intervening lambda).
// The canonicalizer returns it as a placeholder declaration; the solver
// reports it as a CAN002 problem and poisons the module.
type InvalidCycle struct {
	Idents  []string
	Regions []ast.Span
}

func (InvalidCycle) declaration() {}

// Module is the canonicalizer's output for one source file: its
// declarations, the type variable allocated for each of its own top-level
// bindings (ExposedImports), and the placeholder variables standing in for
// the foreign symbols it actually references.
type Module struct {
	ID             modid.ID
	Declarations   []Declaration
	ExposedImports map[Symbol]*types.TVar

	// ImportRefs maps a fresh local type variable name to the foreign
	// Symbol it stands for. build_constraint allocates one of these for
	// every reference to a name from another module rather than inlining
	// that module's type directly, since the dependency may not be solved
	// yet when this module is canonicalized. The solver seeds its starting
	// Substitution by instantiating each entry's Symbol from the relevant
	// dependency's iface.SolvedTypes before walking the Constraint tree.
	ImportRefs map[string]Symbol
}

// Lookups records, for each qualified `Module.name` reference in a
// module's body (keyed by that dotted text), the foreign Symbol it was
// resolved to. The canonicalizer builds it; local identifiers are not
// recorded.
type Lookups struct {
	Resolved map[string]Symbol
}
