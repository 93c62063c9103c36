package registry

import (
	"log"
	"sync"

	"github.com/NotYuSheng/mernverse/metrics"
)

// Registry maps active connections to their resolved display names and
// keeps a live-connection count per name (the same session may be open
// in several tabs at once). A single mutex serializes all mutations.
type Registry struct {
	mu     sync.Mutex
	names  map[string]string // connection id -> display name
	active map[string]int    // display name -> live connection count
}

// New creates an empty connection registry.
func New() *Registry {
	return &Registry{
		names:  make(map[string]string),
		active: make(map[string]int),
	}
}

// Bind records the connection's resolved display name and increments the
// name's active-connection counter. Rebinding an already bound
// connection moves its count to the new name.
func (r *Registry) Bind(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.names[connID]; ok {
		r.decrementLocked(prev)
	}
	r.names[connID] = name
	r.active[name]++

	metrics.ConnectionsOpened.Inc()
	metrics.ActiveConnections.Set(float64(len(r.names)))
	log.Printf("[registry] Connection %s bound as %q", connID, name)
}

// Unbind removes the connection and decrements its name's counter,
// deleting the counter entry entirely at zero so the map cannot grow
// without bound over long uptimes. Unbinding an unknown connection is a
// no-op, which makes disconnect handling idempotent.
func (r *Registry) Unbind(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[connID]
	if !ok {
		return "", false
	}
	delete(r.names, connID)
	r.decrementLocked(name)

	metrics.ConnectionsClosed.Inc()
	metrics.ActiveConnections.Set(float64(len(r.names)))
	return name, true
}

// NameFor resolves a connection to its display name.
func (r *Registry) NameFor(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[connID]
	return name, ok
}

// ActiveCount reports how many live connections hold the given name.
// Zero means no counter entry exists.
func (r *Registry) ActiveCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[name]
}

// Len reports the number of bound connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// decrementLocked drops a name's counter, removing the entry at zero.
// Caller must hold r.mu.
func (r *Registry) decrementLocked(name string) {
	if r.active[name] <= 1 {
		delete(r.active, name)
		return
	}
	r.active[name]--
}
