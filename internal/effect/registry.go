// SPDX-License-Identifier: MIT
package effect

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh effect instance. Every call must return an
// independent instance so two canvases never share mutable state.
type Factory func() Effect

// Meta is the registry-side description of an effect, used by the
// catalog and genre recommendation without instantiating anything.
type Meta struct {
	Description string
	Tags        []string
	Variant     string
}

// Entry pairs an effect id with its factory and metadata.
type Entry struct {
	ID      string
	Factory Factory
	Meta    Meta
}

// Registry maps effect ids to factories. The zero value is not usable;
// call NewRegistry. A package-level default registry serves the common
// case where effects register themselves from init.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds an effect under id. Registering a duplicate id or a nil
// factory is a programming error and panics, matching how template and
// sql drivers treat double registration.
func (r *Registry) Register(id string, f Factory, meta Meta) {
	if f == nil {
		panic(fmt.Sprintf("effect: Register(%q) with nil factory", id))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[id]; dup {
		panic(fmt.Sprintf("effect: Register called twice for %q", id))
	}
	r.entries[id] = Entry{ID: id, Factory: f, Meta: meta}
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// New instantiates the effect registered under id.
func (r *Registry) New(id string) (Effect, error) {
	e, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("effect: unknown effect %q", id)
	}
	return e.Factory(), nil
}

// List returns all entries sorted by id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry that effects register into.
func Default() *Registry { return defaultRegistry }

// Register adds an effect to the default registry.
func Register(id string, f Factory, meta Meta) {
	defaultRegistry.Register(id, f, meta)
}
