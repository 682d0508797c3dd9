// Package bus implements the bounded, multi-producer/single-consumer
// message channel that carries pipeline events from worker goroutines back
// to the coordinator. It guarantees only what the coordinator needs: FIFO
// delivery of messages from any one producer, with no ordering promise
// across producers.
package bus

import (
	"github.com/lumen-lang/lumen/internal/core"
	"github.com/lumen-lang/lumen/internal/iface"
	"github.com/lumen-lang/lumen/internal/modid"
)

// Capacity is the bus's fixed channel buffer size. It bounds how far
// ahead of the coordinator workers can run before send() blocks,
// providing the backpressure the concurrency model relies on.
const Capacity = 1024

// Message is the sum type carried over the bus. Exactly one of the
// embedded payload fields is meaningful, selected by Kind.
type Message struct {
	Kind Kind

	DepsRequested *DepsRequestedMsg
	Constrained   *ConstrainedMsg
	Solved        *SolvedMsg
}

// Kind tags which payload a Message carries.
type Kind int

const (
	KindDepsRequested Kind = iota
	KindConstrained
	KindSolved
)

// DepsRequestedMsg is emitted after a worker parses a module's header.
type DepsRequestedMsg struct {
	ModuleID modid.ID
	DepNames []modid.ModuleName
}

// ConstrainedMsg is emitted after canonicalization and constraint
// generation complete for a module.
type ConstrainedMsg struct {
	Module     *core.Module
	Constraint core.Constraint
	NextVar    int

	// Exposes carries the module header's `exposing (...)` list through to
	// solve dispatch; core.Module itself has no notion of exposed names,
	// only exposed *imports* (ExposedImports), so this rides alongside it.
	Exposes []string

	// ExtraProblems carries non-fatal diagnostics discovered while parsing
	// this module's header (a name/path mismatch, a duplicate exposed
	// name) that don't block canonicalization but still belong in the
	// final problem list. The coordinator folds these in immediately on
	// receipt rather than waiting for Solved.
	ExtraProblems []Problem
}

// SolvedMsg is emitted after the solver finishes (successfully or with a
// poisoned result) for a module.
type SolvedMsg struct {
	ModuleID    modid.ID
	SolvedTypes iface.SolvedTypes
	Problems    []Problem
}

// Problem is the bus-level shape of a diagnostic; assembly.Assemble
// converts these into assembly.Problem (adding the module name) when
// building the final result.
type Problem struct {
	Kind     string
	Message  string
	ModuleID modid.ID
}

// Bus is a bounded FIFO channel of Messages. Many producers may hold a
// Sender; there is exactly one Receiver, owned by the coordinator. The
// underlying channel is never itself closed — closing a channel that
// blocked senders are still writing to is a race no amount of locking
// fully escapes without risking Close blocking forever behind a send to a
// full buffer. Instead, done is closed exactly once and every Send/Recv
// selects on it, so shutdown is instantaneous regardless of what workers
// are doing.
type Bus struct {
	ch   chan Message
	done chan struct{}
}

// New creates a Bus with the standard fixed capacity.
func New() *Bus {
	return &Bus{ch: make(chan Message, Capacity), done: make(chan struct{})}
}

// Sender returns a handle workers use to emit messages. Sends block only
// on the bus filling up; a Sender never blocks the coordinator, which
// only ever calls Recv.
type Sender struct {
	b *Bus
}

// Sender returns a Sender for this bus, safe to clone across goroutines
// by value (it wraps only a pointer back to the bus).
func (b *Bus) Sender() Sender {
	return Sender{b: b}
}

// Send enqueues a message, blocking until either the bus accepts it or the
// coordinator has closed the bus — a worker dispatched for a module no
// longer of interest (the root already terminated the run) has nothing
// left to deliver to, and must not hang forever trying.
func (s Sender) Send(m Message) {
	select {
	case s.b.ch <- m:
	case <-s.b.done:
	}
}

// SendDepsRequested is a convenience wrapper around Send.
func (s Sender) SendDepsRequested(moduleID modid.ID, deps []modid.ModuleName) {
	s.Send(Message{Kind: KindDepsRequested, DepsRequested: &DepsRequestedMsg{ModuleID: moduleID, DepNames: deps}})
}

// SendConstrained is a convenience wrapper around Send.
func (s Sender) SendConstrained(module *core.Module, constraint core.Constraint, nextVar int, exposes []string, extraProblems []Problem) {
	s.Send(Message{Kind: KindConstrained, Constrained: &ConstrainedMsg{
		Module:        module,
		Constraint:    constraint,
		NextVar:       nextVar,
		Exposes:       exposes,
		ExtraProblems: extraProblems,
	}})
}

// SendSolved is a convenience wrapper around Send.
func (s Sender) SendSolved(moduleID modid.ID, solved iface.SolvedTypes, problems []Problem) {
	s.Send(Message{Kind: KindSolved, Solved: &SolvedMsg{ModuleID: moduleID, SolvedTypes: solved, Problems: problems}})
}

// Recv blocks until a message arrives or the bus is closed, in which case
// ok is false — the coordinator's signal to treat the run as ChannelDied.
// A message already queued at the moment of Close is still delivered
// before ok turns false, so the select prefers ch.
func (b *Bus) Recv() (Message, bool) {
	select {
	case m := <-b.ch:
		return m, true
	default:
	}
	select {
	case m := <-b.ch:
		return m, true
	case <-b.done:
		return Message{}, false
	}
}

// Close closes the bus. Only the coordinator, after observing the
// terminal Solved(root) message, may call this; it is safe to call
// exactly once.
func (b *Bus) Close() {
	close(b.done)
}
