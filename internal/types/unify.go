package types

import "fmt"

// UnifyError reports a type unification failure, carrying the two
// conflicting sides so callers can build a structured diagnostic.
type UnifyError struct {
	Left, Right Type
	Reason      string
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s: %s", e.Left.String(), e.Right.String(), e.Reason)
}

// Unify computes the most general substitution that makes t1 and t2 equal,
// composed onto the incoming substitution sub. It applies sub to both sides
// before comparing, so repeated calls thread state the way a solver's
// constraint loop does.
func Unify(t1, t2 Type, sub Substitution) (Substitution, error) {
	t1 = t1.Substitute(sub)
	t2 = t2.Substitute(sub)

	switch a := t1.(type) {
	case *TVar:
		return bindVar(a, t2, sub)
	default:
		if b, ok := t2.(*TVar); ok {
			return bindVar(b, t1, sub)
		}
	}

	switch a := t1.(type) {
	case *TCon:
		b, ok := t2.(*TCon)
		if !ok || a.Name != b.Name {
			return nil, &UnifyError{Left: t1, Right: t2, Reason: "constructor mismatch"}
		}
		return sub, nil

	case *TFunc:
		b, ok := t2.(*TFunc)
		if !ok || len(a.Params) != len(b.Params) {
			return nil, &UnifyError{Left: t1, Right: t2, Reason: "function arity mismatch"}
		}
		current := sub
		var err error
		for i := range a.Params {
			current, err = Unify(a.Params[i], b.Params[i], current)
			if err != nil {
				return nil, err
			}
		}
		return Unify(a.Return, b.Return, current)

	default:
		return nil, &UnifyError{Left: t1, Right: t2, Reason: "unsupported type"}
	}
}

// bindVar binds type variable v to t, performing the occurs check so the
// solver can never construct an infinite type.
func bindVar(v *TVar, t Type, sub Substitution) (Substitution, error) {
	if other, ok := t.(*TVar); ok && other.Name == v.Name {
		return sub, nil
	}
	if occursIn(v.Name, t) {
		return nil, &UnifyError{Left: v, Right: t, Reason: "occurs check failed (infinite type)"}
	}
	next := make(Substitution, len(sub)+1)
	for k, val := range sub {
		next[k] = val
	}
	next[v.Name] = t
	return next, nil
}

func occursIn(name string, t Type) bool {
	switch v := t.(type) {
	case *TVar:
		return v.Name == name
	case *TCon:
		return false
	case *TFunc:
		for _, p := range v.Params {
			if occursIn(name, p) {
				return true
			}
		}
		return occursIn(name, v.Return)
	}
	return false
}

// Instantiate replaces a Scheme's bound type variables with fresh ones,
// produced by the supplied fresh-name generator, yielding a monotype ready
// for unification at a use site.
func Instantiate(s *Scheme, freshName func() string) Type {
	if len(s.TypeVars) == 0 {
		return s.Type
	}
	sub := make(Substitution, len(s.TypeVars))
	for _, v := range s.TypeVars {
		sub[v] = &TVar{Name: freshName()}
	}
	return s.Type.Substitute(sub)
}

// Generalize closes over the free type variables of t that are not also
// free in the surrounding environment, producing a polymorphic Scheme —
// the let-generalization step of Hindley-Milner inference.
func Generalize(envFree map[string]bool, t Type) *Scheme {
	free := FreeVars(t)
	vars := make([]string, 0, len(free))
	for name := range free {
		if !envFree[name] {
			vars = append(vars, name)
		}
	}
	return &Scheme{TypeVars: vars, Type: t}
}
