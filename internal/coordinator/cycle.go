package coordinator

import (
	"sort"

	"github.com/lumen-lang/lumen/internal/modid"
)

// cyclicSCCs finds every strongly-connected component of size greater
// than one, plus every direct self-import, among modules that have
// reported their deps (via DepsRequested) but have not yet solved. Once a
// dependency has solved, the dependency-gated invariant guarantees it
// cannot transitively depend on anything still unsolved, so solved
// modules are excluded from both ends of every edge — they can never be
// part of a live cycle.
//
// This mirrors internal/canon's call-graph SCC detection (same Tarjan
// shape, same "closure over a restricted, currently-known graph"
// approach) but over the module dependency graph instead of a single
// module's local call graph, and is re-run after every event since the
// graph is discovered incrementally.
func (c *coordinator) cyclicSCCs() [][]modid.ID {
	adj := map[modid.ID][]modid.ID{}
	var nodeList []modid.ID
	seen := map[modid.ID]bool{}
	addNode := func(id modid.ID) {
		if !seen[id] {
			seen[id] = true
			nodeList = append(nodeList, id)
		}
	}

	for id, names := range c.deps {
		if _, solved := c.solved[id]; solved {
			continue
		}
		addNode(id)
		var targets []modid.ID
		for _, name := range names {
			depID := c.registry.GetOrCreateID(name)
			if _, solved := c.solved[depID]; solved {
				continue
			}
			targets = append(targets, depID)
			addNode(depID)
		}
		adj[id] = targets
	}

	sort.Slice(nodeList, func(i, j int) bool { return nodeList[i] < nodeList[j] })

	tj := &tarjan{adj: adj, index: map[modid.ID]int{}, lowlink: map[modid.ID]int{}, onStack: map[modid.ID]bool{}}
	for _, id := range nodeList {
		if _, visited := tj.index[id]; !visited {
			tj.strongconnect(id)
		}
	}

	var result [][]modid.ID
	for _, scc := range tj.sccs {
		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
		if len(scc) > 1 {
			result = append(result, scc)
			continue
		}
		id := scc[0]
		for _, t := range adj[id] {
			if t == id {
				result = append(result, scc)
				break
			}
		}
	}
	return result
}

// tarjan is a minimal, non-recursive-API Tarjan SCC finder over
// modid.ID nodes. It's written as its own small type rather than reusing
// internal/canon's unexported callGraph because the node type and the
// source of edges differ (ModuleId vs. local def name); the algorithm
// itself is the same shape.
type tarjan struct {
	adj     map[modid.ID][]modid.ID
	index   map[modid.ID]int
	lowlink map[modid.ID]int
	onStack map[modid.ID]bool
	stack   []modid.ID
	next    int
	sccs    [][]modid.ID
}

func (t *tarjan) strongconnect(v modid.ID) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		if _, visited := t.index[w]; !visited {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []modid.ID
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
