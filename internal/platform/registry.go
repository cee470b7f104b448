package platform

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mj1618/a11y-mcp/internal/protocol"
)

// Registry maps issued node IDs to opaque native handles. Providers own a
// Registry exclusively; the core only ever sees the generated IDs, never
// the handles. All methods are safe for concurrent use.
type Registry[H any] struct {
	mu      sync.Mutex
	handles map[protocol.NodeID]H
}

// NewRegistry creates an empty handle registry.
func NewRegistry[H any]() *Registry[H] {
	return &Registry[H]{handles: make(map[protocol.NodeID]H)}
}

// Put stores a handle under a fresh ID and returns the ID.
func (r *Registry[H]) Put(handle H) protocol.NodeID {
	id := protocol.NodeID(uuid.NewString())
	r.mu.Lock()
	r.handles[id] = handle
	r.mu.Unlock()
	return id
}

// PutAs stores a handle under a caller-chosen ID, replacing any previous
// handle for that ID. Backends whose handles have a natural stable key use
// this to keep IDs stable across repeated reads.
func (r *Registry[H]) PutAs(id protocol.NodeID, handle H) {
	r.mu.Lock()
	r.handles[id] = handle
	r.mu.Unlock()
}

// Get resolves an ID to its handle.
func (r *Registry[H]) Get(id protocol.NodeID) (H, error) {
	r.mu.Lock()
	handle, ok := r.handles[id]
	r.mu.Unlock()
	if !ok {
		var zero H
		return zero, NotFoundError(id)
	}
	return handle, nil
}

// Len reports how many IDs are currently registered.
func (r *Registry[H]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}
