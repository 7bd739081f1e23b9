// Package tsne provides a t-SNE reducer backed by github.com/danaugrs/go-tsne.
package tsne

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	gotsne "github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure Reducer implements the interface.
var _ driven.Reducer = (*Reducer)(nil)

// Name is the registry name of this reducer.
const Name = "tsne"

// Default configuration values.
const (
	DefaultPerplexity = 30.0
	DefaultMaxIter    = 1000
	DefaultSeed       = 42

	// minLearningRate is the floor of the automatic learning rate.
	minLearningRate = 50.0
)

// go-tsne draws its initial layout from the global math/rand source,
// so runs are serialised to keep seeding reproducible.
var globalRandMu sync.Mutex

// Reducer projects vectors to two dimensions with exact t-SNE.
type Reducer struct {
	perplexity   float64
	learningRate float64 // zero selects the automatic rate
	maxIter      int
	seed         int64
}

// Option configures the t-SNE reducer.
type Option func(*Reducer)

// WithPerplexity sets the effective number of neighbours.
func WithPerplexity(p float64) Option {
	return func(r *Reducer) {
		if p > 0 {
			r.perplexity = p
		}
	}
}

// WithLearningRate fixes the gradient descent learning rate.
func WithLearningRate(lr float64) Option {
	return func(r *Reducer) {
		if lr > 0 {
			r.learningRate = lr
		}
	}
}

// WithMaxIter sets the number of optimisation iterations.
func WithMaxIter(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.maxIter = n
		}
	}
}

// WithSeed sets the random seed for the initial layout.
func WithSeed(seed int64) Option {
	return func(r *Reducer) {
		r.seed = seed
	}
}

// New creates a t-SNE reducer with the given options.
func New(opts ...Option) *Reducer {
	r := &Reducer{
		perplexity: DefaultPerplexity,
		maxIter:    DefaultMaxIter,
		seed:       DefaultSeed,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the reducer name.
func (r *Reducer) Name() string {
	return Name
}

// Reduce embeds the vectors in two dimensions.
func (r *Reducer) Reduce(ctx context.Context, vectors [][]float32) ([]domain.Point, error) {
	n := len(vectors)
	if n < 2 {
		return nil, fmt.Errorf("tsne: %w: need at least 2 vectors, got %d", domain.ErrInsufficientData, n)
	}

	x, err := toDense(vectors)
	if err != nil {
		return nil, fmt.Errorf("tsne: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	perplexity := EffectivePerplexity(r.perplexity, n)
	learningRate := r.learningRate
	if learningRate == 0 {
		learningRate = AutoLearningRate(n)
	}
	logger.Debug("tsne: n=%d perplexity=%.2f learning_rate=%.2f iterations=%d seed=%d",
		n, perplexity, learningRate, r.maxIter, r.seed)

	globalRandMu.Lock()
	defer globalRandMu.Unlock()

	//nolint:staticcheck // go-tsne only reads the global source.
	rand.Seed(r.seed)

	t := gotsne.NewTSNE(2, perplexity, learningRate, r.maxIter, false)
	t.EmbedData(x, nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := t.Y.Dims()
	if rows != n || cols != 2 {
		return nil, fmt.Errorf("tsne: unexpected embedding shape %dx%d", rows, cols)
	}

	points := make([]domain.Point, n)
	for i := range points {
		points[i] = domain.Point{X: t.Y.At(i, 0), Y: t.Y.At(i, 1)}
		if math.IsNaN(points[i].X) || math.IsNaN(points[i].Y) {
			return nil, fmt.Errorf("tsne: optimisation diverged at point %d", i)
		}
	}
	return points, nil
}

// EffectivePerplexity clamps the perplexity for small inputs.
// Perplexity must stay well below the number of points for the
// per-point bandwidth search to converge.
func EffectivePerplexity(perplexity float64, n int) float64 {
	limit := float64(n-1) / 3
	if limit < 1 {
		limit = 1
	}
	if perplexity > limit {
		return limit
	}
	return perplexity
}

// AutoLearningRate returns max(n/48, 50).
func AutoLearningRate(n int) float64 {
	return math.Max(float64(n)/48, minLearningRate)
}

// toDense copies the vectors into an n x d matrix, checking widths.
func toDense(vectors [][]float32) (*mat.Dense, error) {
	d := len(vectors[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: empty vector at index 0", domain.ErrInvalidInput)
	}

	data := make([]float64, 0, len(vectors)*d)
	for i, v := range vectors {
		if len(v) != d {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), d)
		}
		for _, f := range v {
			data = append(data, float64(f))
		}
	}
	return mat.NewDense(len(vectors), d, data), nil
}
