package coordinator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lumen-lang/lumen/internal/assembly"
	"github.com/lumen-lang/lumen/internal/bus"
	"github.com/lumen-lang/lumen/internal/errors"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
)

// eventLoop drains the bus message-by-message until either a terminal
// Solved(root) is observed or the bus closes unexpectedly. It is the only
// place coordinator state is mutated, so every field read in worker.go
// and cycle.go is safe without its own lock.
func (c *coordinator) eventLoop(rootID modid.ID) (*assembly.LoadedModule, assembly.LoadingProblem) {
	for {
		msg, ok := c.b.Recv()
		if !ok {
			return nil, &assembly.ChannelDied{}
		}

		var done bool

		switch msg.Kind {
		case bus.KindDepsRequested:
			c.handleDepsRequested(msg.DepsRequested)
		case bus.KindConstrained:
			c.handleConstrained(msg.Constrained)
		case bus.KindSolved:
			done = c.applySolved(msg.Solved.ModuleID, msg.Solved.SolvedTypes, msg.Solved.Problems, rootID)
		}
		if !done {
			done = c.progress(rootID)
		}
		if done {
			return c.finish(rootID), nil
		}
	}
}

// handleDepsRequested records a module's immediate imports and dispatches
// a worker for every dependency name not already in `started` — the
// coordinator's de-duplication point, so a dep named by two different
// modules (or twice by the same one) is only ever processed once.
func (c *coordinator) handleDepsRequested(m *bus.DepsRequestedMsg) {
	c.deps[m.ModuleID] = m.DepNames
	parent := c.registry.NameOf(m.ModuleID)
	for _, name := range m.DepNames {
		if c.started[name] {
			continue
		}
		c.started[name] = true
		c.importedBy[name] = parent
		id := c.handle.GetOrCreateID(name)
		c.dispatchModule(id, name)
	}
}

// importChain walks importedBy from name back to the root, returning the
// path root-first (e.g. ["A", "B", "Missing"]) for a diagnostic message.
func (c *coordinator) importChain(name modid.ModuleName) []modid.ModuleName {
	chain := []modid.ModuleName{name}
	for {
		parent, ok := c.importedBy[name]
		if !ok {
			break
		}
		chain = append(chain, parent)
		name = parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// handleConstrained stores a module's declarations and stashes it in
// pendingSolve; progress (called right after, by eventLoop) is what
// actually dispatches solving once its deps are ready.
//
// Receiving a Constrained for a module whose DepsRequested was never
// observed is a contract violation per spec.md §7: the coordinator would
// have no deps[] entry to gate solving on.
func (c *coordinator) handleConstrained(m *bus.ConstrainedMsg) {
	id := m.Module.ID
	if _, ok := c.deps[id]; !ok {
		panic(fmt.Sprintf("coordinator: Constrained received for %s before its DepsRequested", id))
	}
	c.declarations[id] = m.Module.Declarations
	c.problems = append(c.problems, m.ExtraProblems...)
	c.pendingSolve[id] = &pendingModule{
		module:     m.Module,
		constraint: m.Constraint,
		nextVar:    m.NextVar,
		exposes:    m.Exposes,
	}
}

// applySolved folds a Solved event's payload into coordinator state. When
// the solved module is the root, this is the run's terminal event: the
// bus is closed and applySolved returns true, signaling eventLoop to call
// finish. Dropping the coordinator's own handle, reclaiming the registry
// and assembling the
// result happen later, in finish, only after every dispatched job (not
// just this Solved's sender) has actually returned — SendSolved running
// before a job's deferred handle.Drop() is not ordered by the channel
// send/receive itself, so reclaiming the moment this message is merely
// *received* could race a sibling job's still-pending Drop and panic
// inside Reclaim.
//
// A Solved for a ModuleId the registry never allocated would panic inside
// NameOf when assembly.Assemble resolves problem names — the contract
// violation spec.md §7 calls out for an unknown ModuleId. A non-poisoned
// Solved for a module whose dependencies are not all solved is the other
// Solved-side contract violation and panics here; a poisoned one is
// accepted, since a worker that fails to read or parse a module reports it
// before its dependencies are known.
func (c *coordinator) applySolved(id modid.ID, solvedTypes iface.SolvedTypes, problems []bus.Problem, rootID modid.ID) bool {
	if !solvedTypes.IsPoisoned() && !c.depsSolved(id) {
		panic(fmt.Sprintf("coordinator: Solved received for %s before all of its dependencies were solved", id))
	}
	c.problems = append(c.problems, c.withResolutionTrace(problems)...)
	if _, already := c.solved[id]; already {
		// A module can be marked Solved twice only via the cycle path
		// racing a genuine Solved for the same id; the first one wins and
		// this one is a no-op rather than clobbering real SolvedTypes with
		// a poisoned stand-in.
		return id == rootID
	}
	c.solved[id] = solvedTypes
	delete(c.pendingSolve, id)

	if id != rootID {
		return false
	}

	c.b.Close()
	return true
}

// finish runs once eventLoop has observed the terminal Solved(root): it
// waits for every job the pool ever ran to return (guaranteeing every
// handle.Clone() a job took out has been dropped), only then reclaims the
// registry, and assembles the final LoadedModule.
func (c *coordinator) finish(rootID modid.ID) *assembly.LoadedModule {
	_ = c.pool.Wait()
	c.handle.Drop()
	c.registry.Reclaim()
	return assembly.Assemble(rootID, c.registry, c.solved, c.declarations, c.problems)
}

// progress dispatches every pending module whose dependencies are now
// fully solved, then checks for cyclic imports among what remains
// pending. It runs after every bus event, since either event kind can be
// the one that unblocks a stalled module.
func (c *coordinator) progress(rootID modid.ID) bool {
	for _, id := range c.readyToSolve() {
		pm := c.pendingSolve[id]
		delete(c.pendingSolve, id)
		c.dispatchSolve(id, pm)
	}

	for _, scc := range c.cyclicSCCs() {
		names := moduleNames(c.registry, scc)
		msg := fmt.Sprintf("cyclic import among [%s]", strings.Join(names, ", "))
		for _, id := range scc {
			if c.applySolved(id, iface.Poisoned(), []bus.Problem{{Kind: errors.LDR002, Message: msg, ModuleID: id}}, rootID) {
				return true
			}
		}
	}
	return false
}

// readyToSolve returns the pendingSolve ids (sorted, for deterministic
// dispatch order) whose every dependency is already in c.solved.
func (c *coordinator) readyToSolve() []modid.ID {
	ids := make([]modid.ID, 0, len(c.pendingSolve))
	for id := range c.pendingSolve {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var ready []modid.ID
	for _, id := range ids {
		if c.depsSolved(id) {
			ready = append(ready, id)
		}
	}
	return ready
}

func (c *coordinator) depsSolved(id modid.ID) bool {
	for _, name := range c.deps[id] {
		depID := c.registry.GetOrCreateID(name)
		if _, ok := c.solved[depID]; !ok {
			return false
		}
	}
	return true
}

// withResolutionTrace appends a "via A -> B -> C" suffix to a
// FileNotFound/IOError problem's message, built from importedBy — the
// supplemented counterpart to the original loader's resolution trace,
// since a missing leaf deep in the graph is otherwise reported with no
// indication of how the coordinator got there.
func (c *coordinator) withResolutionTrace(problems []bus.Problem) []bus.Problem {
	if len(problems) == 0 {
		return problems
	}
	out := make([]bus.Problem, len(problems))
	for i, p := range problems {
		if p.Kind != errors.LDR001 && p.Kind != errors.LDR003 {
			out[i] = p
			continue
		}
		chain := c.importChain(c.registry.NameOf(p.ModuleID))
		if len(chain) <= 1 {
			out[i] = p
			continue
		}
		names := make([]string, len(chain))
		for j, n := range chain {
			names[j] = string(n)
		}
		p.Message = fmt.Sprintf("%s (via %s)", p.Message, strings.Join(names, " -> "))
		out[i] = p
	}
	return out
}

func moduleNames(registry *modid.Registry, ids []modid.ID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(registry.NameOf(id))
	}
	return names
}
