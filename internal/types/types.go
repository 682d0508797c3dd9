// Package types implements the small Hindley-Milner type system that backs
// the solver: type variables, constructors, function types, schemes and
// substitutions. It mirrors the shape of a full type checker's core types
// without the effect rows, dictionaries or row polymorphism a complete
// language would need, since the solver itself sits outside the loader's
// core contract.
package types

import (
	"fmt"
	"strings"
)

// Type represents a type in the Lumen type system.
type Type interface {
	String() string
	Equals(Type) bool
	Substitute(Substitution) Type
}

// TVar is an unbound (or as-yet-unsolved) type variable.
type TVar struct {
	Name string
}

func (t *TVar) String() string { return t.Name }

func (t *TVar) Equals(other Type) bool {
	o, ok := other.(*TVar)
	return ok && t.Name == o.Name
}

func (t *TVar) Substitute(sub Substitution) Type {
	if repl, ok := sub[t.Name]; ok {
		return repl
	}
	return t
}

// TCon is a nullary type constructor (Int, String, Bool, ...).
type TCon struct {
	Name string
}

func (t *TCon) String() string { return t.Name }

func (t *TCon) Equals(other Type) bool {
	o, ok := other.(*TCon)
	return ok && t.Name == o.Name
}

func (t *TCon) Substitute(Substitution) Type { return t }

// Built-in nullary type constructors.
var (
	TInt    = &TCon{Name: "Int"}
	TString = &TCon{Name: "String"}
	TBool   = &TCon{Name: "Bool"}
)

// TFunc is a (possibly multi-argument) function type.
type TFunc struct {
	Params []Type
	Return Type
}

func (t *TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	if len(parts) == 1 {
		return fmt.Sprintf("%s -> %s", parts[0], t.Return.String())
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Return.String())
}

func (t *TFunc) Equals(other Type) bool {
	o, ok := other.(*TFunc)
	if !ok || len(t.Params) != len(o.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return t.Return.Equals(o.Return)
}

func (t *TFunc) Substitute(sub Substitution) Type {
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Substitute(sub)
	}
	return &TFunc{Params: params, Return: t.Return.Substitute(sub)}
}

// Scheme is a type scheme: a type universally quantified over TypeVars.
// A Scheme with no TypeVars is a monotype.
type Scheme struct {
	TypeVars []string
	Type     Type
}

func (s *Scheme) String() string {
	if len(s.TypeVars) == 0 {
		return s.Type.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(s.TypeVars, " "), s.Type.String())
}

// Mono wraps a monotype as a (non-generalized) Scheme.
func Mono(t Type) *Scheme {
	return &Scheme{Type: t}
}
