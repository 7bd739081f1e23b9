package reducers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// registryMockReducer is a simple mock for testing registry functionality.
type registryMockReducer struct {
	name string
	seed int64
}

func (m *registryMockReducer) Name() string { return m.name }
func (m *registryMockReducer) Reduce(_ context.Context, vectors [][]float32) ([]domain.Point, error) {
	return make([]domain.Point, len(vectors)), nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.Empty(t, r.builders)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	r.Register("mock", func(_ domain.ReductionSettings) (driven.Reducer, error) {
		return &registryMockReducer{name: "mock"}, nil
	})

	assert.True(t, r.Has("mock"))
	assert.False(t, r.Has("other"))
}

func TestRegistry_Build_PassesSettings(t *testing.T) {
	r := NewRegistry()
	r.Register("mock", func(s domain.ReductionSettings) (driven.Reducer, error) {
		return &registryMockReducer{name: "mock", seed: s.Seed}, nil
	})

	reducer, err := r.Build("mock", domain.ReductionSettings{Seed: 99})
	require.NoError(t, err)

	assert.Equal(t, int64(99), reducer.(*registryMockReducer).seed)
}

func TestRegistry_Build_UnknownName(t *testing.T) {
	r := NewDefaultRegistry()

	reducer, err := r.Build("pca", domain.DefaultPipelineConfig().Reduction)

	assert.Nil(t, reducer)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)
	assert.Contains(t, err.Error(), "pca")
}

func TestRegistry_BuildAll(t *testing.T) {
	r := NewDefaultRegistry()

	built, err := r.BuildAll([]string{"tsne", "umap"}, domain.DefaultPipelineConfig().Reduction)
	require.NoError(t, err)

	require.Len(t, built, 2)
	assert.Equal(t, "tsne", built[0].Name())
	assert.Equal(t, "umap", built[1].Name())
}

func TestRegistry_BuildAll_FailsOnUnknownBeforeBuildingRest(t *testing.T) {
	r := NewRegistry()
	var calls int
	r.Register("mock", func(_ domain.ReductionSettings) (driven.Reducer, error) {
		calls++
		return &registryMockReducer{name: "mock"}, nil
	})

	_, err := r.BuildAll([]string{"pca", "mock"}, domain.ReductionSettings{})

	assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)
	assert.Zero(t, calls)
}

func TestRegistry_BuildAll_Duplicate(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.BuildAll([]string{"tsne", "tsne"}, domain.DefaultPipelineConfig().Reduction)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	assert.Equal(t, []string{"tsne", "umap"}, NewDefaultRegistry().Names())
}

func TestRegisterDefaults_ZeroSettingsUseDefaults(t *testing.T) {
	r := NewDefaultRegistry()

	for _, name := range r.Names() {
		reducer, err := r.Build(name, domain.ReductionSettings{})
		require.NoError(t, err, name)
		assert.Equal(t, name, reducer.Name())
	}
}
