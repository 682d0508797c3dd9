// Package modid interns module names into dense, stable integer ids and
// mediates the registry's exclusive-to-shared handle lifecycle that the
// coordinator relies on: one thread owns the registry uniquely while the
// root file is loaded inline, then the registry is promoted to a shared,
// mutex-guarded handle once worker jobs are dispatched, and reclaimed
// uniquely again only once every shared handle has been dropped.
package modid

import (
	"fmt"
	"sync"
)

// ModuleName is a dotted module identifier such as "A.B.C".
type ModuleName string

// ID is a dense, nonzero, monotonically allocated module id.
type ID int32

func (id ID) String() string {
	return fmt.Sprintf("mod#%d", int32(id))
}

// Registry interns ModuleNames to IDs. The zero value is not usable; build
// one with New. Registry is safe for concurrent use once Share has been
// called; before that, it is expected to have exactly one owner.
type Registry struct {
	mu      sync.Mutex
	byName  map[ModuleName]ID
	byID    map[ID]ModuleName
	next    ID
	shared  bool
	handles int32
}

// New creates an empty registry, owned exclusively by the caller.
func New() *Registry {
	return &Registry{
		byName: make(map[ModuleName]ID),
		byID:   make(map[ID]ModuleName),
		next:   1,
	}
}

// GetOrCreateID returns name's id, allocating a fresh one if name has not
// been seen before. IDs start at 1 and are never reused.
func (r *Registry) GetOrCreateID(name ModuleName) ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id
	}
	id := r.next
	r.next++
	r.byName[name] = id
	r.byID[id] = name
	return id
}

// NameOf returns the ModuleName previously assigned to id. It panics if id
// was never returned by GetOrCreateID on this registry — an unknown
// ModuleId reaching this call is a coordinator contract violation, not a
// recoverable error.
func (r *Registry) NameOf(id ID) ModuleName {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.byID[id]
	if !ok {
		panic(fmt.Sprintf("modid: unknown module id %v", id))
	}
	return name
}

// Handle is a cloneable reference to a shared Registry, handed to worker
// jobs once the coordinator has promoted the registry out of exclusive
// mode. Cloning increments a live-handle counter so Reclaim can detect a
// leaked handle rather than silently under-reporting sharing.
type Handle struct {
	r *Registry
}

// Share promotes r to shared mode and returns the first outstanding
// Handle. It must be called exactly once, after the root module has been
// loaded inline and before any worker is dispatched; calling it twice is a
// bug.
func (r *Registry) Share() Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shared {
		panic("modid: registry already shared")
	}
	r.shared = true
	r.handles = 1
	return Handle{r: r}
}

// Clone produces another live handle onto the same shared registry, for
// handing to an additional worker job.
func (h Handle) Clone() Handle {
	h.r.mu.Lock()
	h.r.handles++
	h.r.mu.Unlock()
	return h
}

// GetOrCreateID delegates to the underlying shared registry.
func (h Handle) GetOrCreateID(name ModuleName) ID {
	return h.r.GetOrCreateID(name)
}

// NameOf delegates to the underlying shared registry.
func (h Handle) NameOf(id ID) ModuleName {
	return h.r.NameOf(id)
}

// Drop releases this handle. The coordinator must drop its own handle
// alongside every worker's handle before calling Reclaim.
func (h Handle) Drop() {
	h.r.mu.Lock()
	h.r.handles--
	h.r.mu.Unlock()
}

// Reclaim returns the registry to exclusive ownership once every handle
// has been dropped. A failure to reclaim (outstanding handles remain) is a
// coordinator implementation bug: it means a worker job outlived the
// event loop that was supposed to join on it, so Reclaim panics rather
// than returning a swallowable error.
func (r *Registry) Reclaim() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.handles != 0 {
		panic(fmt.Sprintf("modid: reclaim failed, %d handle(s) still outstanding", r.handles))
	}
	r.shared = false
	return r
}

// Len reports how many module names have been interned, mainly for tests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName)
}
