package types

// Env is a typing environment: a mapping from identifier name to its type
// scheme, used while canonicalizing and solving a single module's
// declarations.
type Env struct {
	parent *Env
	vars   map[string]*Scheme
}

// NewEnv creates an empty environment with no parent.
func NewEnv() *Env {
	return &Env{vars: map[string]*Scheme{}}
}

// Child creates a new environment nested inside e, used when entering a
// lambda or let body so inner bindings shadow outer ones.
func (e *Env) Child() *Env {
	return &Env{parent: e, vars: map[string]*Scheme{}}
}

// Bind associates name with scheme in this environment frame.
func (e *Env) Bind(name string, scheme *Scheme) {
	e.vars[name] = scheme
}

// Lookup searches this frame and its ancestors for name.
func (e *Env) Lookup(name string) (*Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// FreeVars returns the union of free type variables across every scheme
// reachable from e, used to decide what Generalize is allowed to quantify.
func (e *Env) FreeVars() map[string]bool {
	out := map[string]bool{}
	for env := e; env != nil; env = env.parent {
		for _, s := range env.vars {
			for name := range FreeVarsScheme(s) {
				out[name] = true
			}
		}
	}
	return out
}
