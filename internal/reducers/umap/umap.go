// Package umap provides a UMAP reducer built on gonum.
//
// The algorithm follows the reference formulation: an exact k-nearest-neighbour
// graph is turned into a fuzzy simplicial set, and a low-dimensional layout is
// optimised against it with negative sampling. Neighbour search is brute force,
// which is adequate for a few thousand points.
package umap

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure Reducer implements the interface.
var _ driven.Reducer = (*Reducer)(nil)

// Name is the registry name of this reducer.
const Name = "umap"

// Default configuration values.
const (
	DefaultNeighbors          = 15
	DefaultMinDist            = 0.1
	DefaultSpread             = 1.0
	DefaultSeed               = 42
	DefaultLearningRate       = 1.0
	DefaultNegativeSampleRate = 5

	// Automatic epoch counts, chosen by dataset size.
	smallDatasetEpochs = 500
	largeDatasetEpochs = 200
	smallDatasetLimit  = 10000

	// initRange bounds the random initial layout to [-initRange, initRange].
	initRange = 10.0
)

// Reducer projects vectors to two dimensions with UMAP.
type Reducer struct {
	neighbors          int
	minDist            float64
	spread             float64
	epochs             int // zero selects by dataset size
	learningRate       float64
	negativeSampleRate int
	seed               int64

	a, b float64
}

// Option configures the UMAP reducer.
type Option func(*Reducer)

// WithNeighbors sets the neighbourhood size, counting the point itself.
func WithNeighbors(k int) Option {
	return func(r *Reducer) {
		if k > 0 {
			r.neighbors = k
		}
	}
}

// WithMinDist sets how tightly points may be packed in the layout.
func WithMinDist(d float64) Option {
	return func(r *Reducer) {
		if d >= 0 {
			r.minDist = d
		}
	}
}

// WithSpread sets the scale of the embedded points.
func WithSpread(s float64) Option {
	return func(r *Reducer) {
		if s > 0 {
			r.spread = s
		}
	}
}

// WithEpochs fixes the number of optimisation epochs.
func WithEpochs(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.epochs = n
		}
	}
}

// WithSeed sets the random seed for initialisation and negative sampling.
func WithSeed(seed int64) Option {
	return func(r *Reducer) {
		r.seed = seed
	}
}

// New creates a UMAP reducer and fits the layout curve for its parameters.
func New(opts ...Option) (*Reducer, error) {
	r := &Reducer{
		neighbors:          DefaultNeighbors,
		minDist:            DefaultMinDist,
		spread:             DefaultSpread,
		learningRate:       DefaultLearningRate,
		negativeSampleRate: DefaultNegativeSampleRate,
		seed:               DefaultSeed,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.minDist > r.spread {
		return nil, fmt.Errorf("umap: %w: min_dist %.3f must not exceed spread %.3f",
			domain.ErrInvalidInput, r.minDist, r.spread)
	}

	a, b, err := FitAB(r.spread, r.minDist)
	if err != nil {
		return nil, fmt.Errorf("umap: %w", err)
	}
	r.a, r.b = a, b
	return r, nil
}

// Name returns the reducer name.
func (r *Reducer) Name() string {
	return Name
}

// Reduce embeds the vectors in two dimensions.
func (r *Reducer) Reduce(ctx context.Context, vectors [][]float32) ([]domain.Point, error) {
	n := len(vectors)
	if n < 2 {
		return nil, fmt.Errorf("umap: %w: need at least 2 vectors, got %d", domain.ErrInsufficientData, n)
	}

	data, err := toFloat64(vectors)
	if err != nil {
		return nil, fmt.Errorf("umap: %w", err)
	}

	k := min(r.neighbors, n)
	epochs := r.epochs
	if epochs == 0 {
		epochs = autoEpochs(n)
	}
	logger.Debug("umap: n=%d neighbors=%d a=%.4f b=%.4f epochs=%d seed=%d", n, k, r.a, r.b, epochs, r.seed)

	knn, err := nearestNeighbors(ctx, data, k)
	if err != nil {
		return nil, err
	}
	graph := fuzzySimplicialSet(knn)
	edges := graph.edges(epochs)

	rng := rand.New(rand.NewPCG(uint64(r.seed), uint64(r.seed)))
	embedding := randomLayout(rng, n)

	opt := layoutOptimizer{
		a:                  r.a,
		b:                  r.b,
		learningRate:       r.learningRate,
		negativeSampleRate: float64(r.negativeSampleRate),
		rng:                rng,
	}
	if err := opt.run(ctx, embedding, edges, epochs); err != nil {
		return nil, err
	}

	points := make([]domain.Point, n)
	for i, p := range embedding {
		points[i] = domain.Point{X: p[0], Y: p[1]}
	}
	return points, nil
}

func autoEpochs(n int) int {
	if n <= smallDatasetLimit {
		return smallDatasetEpochs
	}
	return largeDatasetEpochs
}

func randomLayout(rng *rand.Rand, n int) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		out[i][0] = rng.Float64()*2*initRange - initRange
		out[i][1] = rng.Float64()*2*initRange - initRange
	}
	return out
}

func toFloat64(vectors [][]float32) ([][]float64, error) {
	d := len(vectors[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: empty vector at index 0", domain.ErrInvalidInput)
	}
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) != d {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), d)
		}
		row := make([]float64, d)
		for j, f := range v {
			row[j] = float64(f)
		}
		out[i] = row
	}
	return out, nil
}
