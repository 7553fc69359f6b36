// Package registry maps script-side entity ids to native widget handles.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Registry errors.
var (
	ErrInvalidHandle = errors.New("invalid handle")
	ErrEmptyID       = errors.New("empty entity id")
	ErrHandleChanged = errors.New("entity already registered with a different handle")
	ErrHandleInUse   = errors.New("handle already registered to another entity")
)

// Registry is a bidirectional id <-> handle table.
//
// Once an id has a handle the mapping is immutable until Unregister.
// Registry is not safe for concurrent use; callers confine it to one
// goroutine.
type Registry struct {
	handles map[string]wire.Handle
	ids     map[wire.Handle]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		handles: make(map[string]wire.Handle),
		ids:     make(map[wire.Handle]string),
	}
}

// Register records the handle for id. Registering the same pair twice is
// a no-op.
func (r *Registry) Register(id string, h wire.Handle) error {
	if id == "" {
		return ErrEmptyID
	}
	if !h.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	if existing, ok := r.handles[id]; ok {
		if existing == h {
			return nil
		}
		return fmt.Errorf("%w: %s has %d, got %d", ErrHandleChanged, id, existing, h)
	}
	if owner, ok := r.ids[h]; ok {
		return fmt.Errorf("%w: %d belongs to %s", ErrHandleInUse, h, owner)
	}
	r.handles[id] = h
	r.ids[h] = id
	return nil
}

// Resolve returns the handle for id.
func (r *Registry) Resolve(id string) (wire.Handle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Lookup returns the id that owns a handle.
func (r *Registry) Lookup(h wire.Handle) (string, bool) {
	id, ok := r.ids[h]
	return id, ok
}

// Unregister removes id and its handle. It returns the removed handle.
func (r *Registry) Unregister(id string) (wire.Handle, bool) {
	h, ok := r.handles[id]
	if !ok {
		return 0, false
	}
	delete(r.handles, id)
	delete(r.ids, h)
	return h, true
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.handles)
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
