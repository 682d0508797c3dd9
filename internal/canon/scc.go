package canon

import "github.com/lumen-lang/lumen/internal/ast"

// callGraph is a dependency graph between a module's top-level def names,
// used to find mutually recursive groups before constraint generation.
type callGraph struct {
	nodes   []string
	edges   map[string][]string
	nodeSet map[string]bool
}

func newCallGraph() *callGraph {
	return &callGraph{
		edges:   make(map[string][]string),
		nodeSet: make(map[string]bool),
	}
}

func (g *callGraph) addNode(name string) {
	if !g.nodeSet[name] {
		g.nodes = append(g.nodes, name)
		g.nodeSet[name] = true
		g.edges[name] = []string{}
	}
}

func (g *callGraph) addEdge(caller, callee string) {
	g.addNode(caller)
	g.addNode(callee)
	g.edges[caller] = append(g.edges[caller], callee)
}

// sccs computes the graph's strongly connected components via Tarjan's
// algorithm. Components are returned in reverse topological order, same as
// the classic algorithm produces; callers that need def order should treat
// each returned slice as an unordered set.
func (g *callGraph) sccs() [][]string {
	index := 0
	var stack []string
	indices := make(map[string]int)
	lowlinks := make(map[string]int)
	onStack := make(map[string]bool)
	var result [][]string

	var strongconnect func(string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, ok := indices[w]; !ok {
				strongconnect(w)
				lowlinks[v] = min(lowlinks[v], lowlinks[w])
			} else if onStack[w] {
				lowlinks[v] = min(lowlinks[v], indices[w])
			}
		}

		if lowlinks[v] == indices[v] {
			var scc []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			result = append(result, scc)
		}
	}

	for _, node := range g.nodes {
		if _, ok := indices[node]; !ok {
			strongconnect(node)
		}
	}
	return result
}

// buildCallGraph links every local def to the other local defs its body
// references. References to imported names or to identifiers bound within
// the body itself (lambda params, let bindings) are not edges: only
// references resolving to another of this module's top-level names count
// toward recursion analysis.
func buildCallGraph(defs []*ast.Def, localNames map[string]bool) *callGraph {
	g := newCallGraph()
	for _, d := range defs {
		g.addNode(d.Name)
	}
	for _, d := range defs {
		bound := map[string]bool{}
		for _, p := range d.Params {
			bound[p] = true
		}
		for _, ref := range freeIdents(d.Body, bound) {
			if localNames[ref] && ref != d.Name {
				g.addEdge(d.Name, ref)
			}
		}
	}
	return g
}

// freeIdents collects every Ident/QualifiedRef.Name referenced in expr that
// is not shadowed by bound (a lambda or let that introduces its own name).
// QualifiedRef names are returned as "Module.Name" and never match a local
// def, so they simply fall out of the local-recursion analysis naturally.
func freeIdents(expr ast.Expr, bound map[string]bool) []string {
	var refs []string
	switch e := expr.(type) {
	case *ast.Ident:
		if !bound[e.Name] {
			refs = append(refs, e.Name)
		}
	case *ast.QualifiedRef:
		refs = append(refs, e.Module+"."+e.Name)
	case *ast.Lit:
		// no references
	case *ast.Lambda:
		inner := cloneBound(bound)
		for _, p := range e.Params {
			inner[p] = true
		}
		refs = append(refs, freeIdents(e.Body, inner)...)
	case *ast.Apply:
		refs = append(refs, freeIdents(e.Fn, bound)...)
		for _, a := range e.Args {
			refs = append(refs, freeIdents(a, bound)...)
		}
	case *ast.Let:
		refs = append(refs, freeIdents(e.Value, bound)...)
		inner := cloneBound(bound)
		inner[e.Name] = true
		refs = append(refs, freeIdents(e.Body, inner)...)
	case *ast.If:
		refs = append(refs, freeIdents(e.Cond, bound)...)
		refs = append(refs, freeIdents(e.Then, bound)...)
		refs = append(refs, freeIdents(e.Else, bound)...)
	case *ast.BinOp:
		refs = append(refs, freeIdents(e.Left, bound)...)
		refs = append(refs, freeIdents(e.Right, bound)...)
	}
	return refs
}

func cloneBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound)+1)
	for k, v := range bound {
		out[k] = v
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
