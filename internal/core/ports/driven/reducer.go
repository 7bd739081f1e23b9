package driven

import (
	"context"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// Reducer projects high-dimensional vectors to two dimensions.
// Reducers are built by name from the reducer registry.
type Reducer interface {
	// Name returns the algorithm name used in configuration and file names.
	Name() string

	// Reduce returns one point per vector, in input order.
	// All vectors must share the same width.
	Reduce(ctx context.Context, vectors [][]float32) ([]domain.Point, error)
}
