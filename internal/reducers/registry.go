// Package reducers provides the dimensionality reduction algorithms and the
// registry that builds them by name from configuration.
package reducers

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// BuilderFunc creates a Reducer from the reduction settings.
type BuilderFunc func(settings domain.ReductionSettings) (driven.Reducer, error)

// Ensure Registry implements the interface.
var _ driven.ReducerRegistry = (*Registry)(nil)

// Registry maps algorithm names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty reducer registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// NewDefaultRegistry creates a registry with every built-in reducer registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// Register adds a reducer builder to the registry.
// Name should be unique and match the reducer's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a reducer by name.
// An unregistered name is an invalid-argument error that names the value.
func (r *Registry) Build(name string, settings domain.ReductionSettings) (driven.Reducer, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q (available: %v)",
			domain.ErrInvalidInput, domain.ErrUnsupportedAlgorithm, name, r.Names())
	}
	return builder(settings)
}

// BuildAll creates one reducer per name, in order.
// It fails on the first unknown name so nothing runs with a bad configuration.
func (r *Registry) BuildAll(names []string, settings domain.ReductionSettings) ([]driven.Reducer, error) {
	out := make([]driven.Reducer, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, fmt.Errorf("%w: algorithm %q listed twice", domain.ErrInvalidInput, name)
		}
		seen[name] = true

		reducer, err := r.Build(name, settings)
		if err != nil {
			return nil, err
		}
		out = append(out, reducer)
	}
	return out, nil
}

// Has returns true if a reducer with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered reducer names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
