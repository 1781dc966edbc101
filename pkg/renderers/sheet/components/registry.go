package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-sheetform/pkg/schema"
)

// Renderer writes the markup for one field into buf. Implementations bind
// every control they emit through data.Bind so the builder can report the
// control set alongside the markup.
type Renderer func(buf *bytes.Buffer, field schema.Field, data ComponentData) error

// RowsRenderer writes the rows of a repeating structure into buf. It is used
// both inline and when staged containers are materialised later.
type RowsRenderer func(buf *bytes.Buffer, structure schema.RepeatingStructure, data ComponentData) error

// Descriptor bundles a field renderer with its optional row renderer.
type Descriptor struct {
	Name     string
	Renderer Renderer
	Rows     RowsRenderer
}

// Registry maps field kinds to descriptors. Callers can register new kinds or
// override the defaults.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = descriptor
	}
	return cloned
}

// Register associates a descriptor with a kind. Existing entries are
// replaced.
func (r *Registry) Register(kind schema.Kind, descriptor Descriptor) error {
	name := normalize(string(kind))
	if name == "" {
		return fmt.Errorf("components: component kind is required")
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = string(kind)
	r.components[name] = descriptor
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(kind schema.Kind, descriptor Descriptor) {
	if err := r.Register(kind, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches the descriptor registered for kind.
func (r *Registry) Descriptor(kind schema.Kind) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(string(kind))]
	return descriptor, ok
}

// Names returns the registered kinds in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for _, descriptor := range r.components {
		names = append(names, descriptor.Name)
	}
	slices.Sort(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
