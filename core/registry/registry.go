// Package registry is the export boundary: finished model descriptors are
// registered here under their identity so the host can hand them to the
// framework. It detects identity and collection-name conflicts.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/artpar/modelkit/core/descriptor"
)

// Registry holds exported model descriptors keyed by identity.
type Registry struct {
	mu sync.RWMutex

	// models by identity
	models map[string]*descriptor.Descriptor

	// collection names to model identities
	collections map[string]string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		models:      make(map[string]*descriptor.Descriptor),
		collections: make(map[string]string),
	}
}

// Register exports a descriptor. Returns an error when the identity is
// empty, already taken, or when the derived collection name is already
// claimed by another model.
func (r *Registry) Register(desc *descriptor.Descriptor) error {
	if desc == nil {
		return fmt.Errorf("register: descriptor is nil")
	}
	if desc.Identity == "" {
		return fmt.Errorf("register: descriptor has no identity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[desc.Identity]; exists {
		return fmt.Errorf("model %q already registered", desc.Identity)
	}

	collection := Pluralize(desc.Identity)
	if existing, exists := r.collections[collection]; exists {
		return fmt.Errorf("collection %q already claimed by model %q", collection, existing)
	}

	r.models[desc.Identity] = desc
	r.collections[collection] = desc.Identity

	return nil
}

// Unregister removes a model from the registry.
func (r *Registry) Unregister(identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[identity]; !exists {
		return fmt.Errorf("model %q not registered", identity)
	}

	delete(r.collections, Pluralize(identity))
	delete(r.models, identity)

	return nil
}

// Get returns a registered descriptor by identity.
func (r *Registry) Get(identity string) (*descriptor.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.models[identity]
	return desc, ok
}

// Collection returns the descriptor claimed under a collection name.
func (r *Registry) Collection(name string) (*descriptor.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.collections[name]
	if !ok {
		return nil, false
	}
	return r.models[identity], true
}

// Names returns all registered identities, sorted for consistent ordering.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
