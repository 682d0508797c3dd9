package core

import "github.com/lumen-lang/lumen/internal/types"

// Constraint is the opaque tree build_constraint hands to the solver: a
// conjunction of type equalities. The solver walks it once, threading a
// single Substitution through. Local let-bindings are deliberately not a
// distinct node here: build_constraint gives them a fresh monomorphic type
// variable and unifies it against the bound expression directly, the same
// as a lambda parameter. Only top-level declarations are generalized, and
// that happens once per declaration after the whole module solves, not
// while walking this tree. Full let-polymorphism would need implicit
// instance constraints threaded through solving, machinery this loader's
// solver collaborator doesn't need to carry.
type Constraint interface {
	constraint()
}

// CEq demands that Left and Right unify.
type CEq struct {
	Left, Right types.Type
	Symbol      Symbol // the def this equality was generated for, for diagnostics
}

func (CEq) constraint() {}

// CAnd is a conjunction: every member constraint must hold.
type CAnd struct {
	Members []Constraint
}

func (CAnd) constraint() {}

// Empty is the trivially-satisfied constraint, used for modules with no
// declarations.
type Empty struct{}

func (Empty) constraint() {}

// And is a small helper that flattens nil/Empty members and avoids
// wrapping a single constraint in a pointless CAnd.
func And(members ...Constraint) Constraint {
	var filtered []Constraint
	for _, m := range members {
		if m == nil {
			continue
		}
		if _, ok := m.(Empty); ok {
			continue
		}
		filtered = append(filtered, m)
	}
	switch len(filtered) {
	case 0:
		return Empty{}
	case 1:
		return filtered[0]
	default:
		return CAnd{Members: filtered}
	}
}
