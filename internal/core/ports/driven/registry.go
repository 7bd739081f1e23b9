package driven

import "github.com/custodia-labs/papermap/internal/core/domain"

// ReducerRegistry builds reducers by algorithm name.
type ReducerRegistry interface {
	// BuildAll returns one reducer per name, in order. Unknown or repeated
	// names fail before any reducer runs.
	BuildAll(names []string, settings domain.ReductionSettings) ([]Reducer, error)

	// Names returns the registered algorithm names, sorted.
	Names() []string
}
