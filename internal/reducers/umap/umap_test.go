package umap

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// blobs returns two well separated groups of 6-dimensional vectors.
func blobs(perGroup int) [][]float32 {
	var out [][]float32
	for g := 0; g < 2; g++ {
		for i := 0; i < perGroup; i++ {
			v := make([]float32, 6)
			for d := range v {
				v[d] = float32(g*20) + float32((i*5+d*3)%7)*0.2
			}
			out = append(out, v)
		}
	}
	return out
}

func mean(points []domain.Point) domain.Point {
	var m domain.Point
	for _, p := range points {
		m.X += p.X
		m.Y += p.Y
	}
	m.X /= float64(len(points))
	m.Y /= float64(len(points))
	return m
}

func dist(p, q domain.Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func TestFitAB_DefaultParameters(t *testing.T) {
	a, b, err := FitAB(1.0, 0.1)
	require.NoError(t, err)

	assert.InDelta(t, 1.577, a, 0.03)
	assert.InDelta(t, 0.895, b, 0.02)
}

func TestFitAB_InvalidSpread(t *testing.T) {
	_, _, err := FitAB(0, 0.1)
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.Equal(t, Name, r.Name())
	assert.Equal(t, DefaultNeighbors, r.neighbors)
	assert.Equal(t, DefaultMinDist, r.minDist)
	assert.Equal(t, DefaultSpread, r.spread)
	assert.Equal(t, int64(DefaultSeed), r.seed)
	assert.Zero(t, r.epochs)
	assert.Greater(t, r.a, 0.0)
	assert.Greater(t, r.b, 0.0)
}

func TestNew_MinDistAboveSpread(t *testing.T) {
	_, err := New(WithMinDist(2), WithSpread(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAutoEpochs(t *testing.T) {
	assert.Equal(t, 500, autoEpochs(10))
	assert.Equal(t, 500, autoEpochs(10000))
	assert.Equal(t, 200, autoEpochs(10001))
}

func TestNearestNeighbors_SelfFirstThenByDistance(t *testing.T) {
	data := [][]float64{{0}, {1}, {3}, {10}}

	g, err := nearestNeighbors(context.Background(), data, 3)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, g.indices[0])
	assert.Equal(t, []float64{0, 1, 3}, g.dists[0])
	assert.Equal(t, []int{3, 2, 1}, g.indices[3])
}

func TestNearestNeighbors_DuplicatePointsKeepSelfFirst(t *testing.T) {
	data := [][]float64{{1, 1}, {1, 1}, {5, 5}}

	g, err := nearestNeighbors(context.Background(), data, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, g.indices[1])
}

func TestSmoothKNNDist_MembershipsSumToLog2K(t *testing.T) {
	dists := [][]float64{{0, 1, 2, 3, 4}}

	sigmas, rhos := smoothKNNDist(dists, 5)

	assert.Equal(t, 1.0, rhos[0])
	var psum float64
	for _, d := range dists[0][1:] {
		psum += math.Exp(-math.Max(0, d-rhos[0]) / sigmas[0])
	}
	assert.InDelta(t, math.Log2(5), psum, 1e-3)
}

func TestFuzzySimplicialSet_Symmetric(t *testing.T) {
	data := [][]float64{{0}, {1}, {2.5}, {7}, {7.5}}
	knn, err := nearestNeighbors(context.Background(), data, 3)
	require.NoError(t, err)

	g := fuzzySimplicialSet(knn)

	for i, row := range g.rows {
		assert.NotContains(t, row, i)
		for j, w := range row {
			assert.Equal(t, w, g.rows[j][i])
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
		}
	}
}

func TestEdges_PrunesWeakAndOrders(t *testing.T) {
	g := &fuzzyGraph{rows: []map[int]float64{
		{1: 1.0, 2: 0.001},
		{0: 1.0},
		{0: 0.001},
	}}

	edges := g.edges(200)

	require.Len(t, edges, 2)
	assert.Equal(t, edge{head: 0, tail: 1, epochsPerSample: 1}, edges[0])
	assert.Equal(t, edge{head: 1, tail: 0, epochsPerSample: 1}, edges[1])
}

func TestReduce_InsufficientData(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.Reduce(context.Background(), [][]float32{{1}})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestReduce_DimensionMismatch(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	_, err = r.Reduce(context.Background(), [][]float32{{1, 2}, {3}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestReduce_CancelledContext(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Reduce(ctx, blobs(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReduce_TwoPoints(t *testing.T) {
	r, err := New(WithEpochs(50))
	require.NoError(t, err)

	points, err := r.Reduce(context.Background(), [][]float32{{0, 0}, {1, 1}})
	require.NoError(t, err)

	require.Len(t, points, 2)
	for _, p := range points {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
}

func TestReduce_SeparatesClusters(t *testing.T) {
	vectors := blobs(10)
	r, err := New(WithNeighbors(5), WithEpochs(200))
	require.NoError(t, err)

	points, err := r.Reduce(context.Background(), vectors)
	require.NoError(t, err)
	require.Len(t, points, len(vectors))

	first, second := points[:10], points[10:]
	c1, c2 := mean(first), mean(second)

	var spread float64
	for _, p := range first {
		spread = math.Max(spread, dist(p, c1))
	}
	for _, p := range second {
		spread = math.Max(spread, dist(p, c2))
	}
	assert.Greater(t, dist(c1, c2), spread)
}

func TestReduce_Deterministic(t *testing.T) {
	vectors := blobs(6)

	r1, err := New(WithSeed(42), WithEpochs(100))
	require.NoError(t, err)
	r2, err := New(WithSeed(42), WithEpochs(100))
	require.NoError(t, err)

	a, err := r1.Reduce(context.Background(), vectors)
	require.NoError(t, err)
	b, err := r2.Reduce(context.Background(), vectors)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
