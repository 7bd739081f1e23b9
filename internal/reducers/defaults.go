package reducers

import (
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/reducers/tsne"
	"github.com/custodia-labs/papermap/internal/reducers/umap"
)

// RegisterDefaults registers all built-in reducers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(tsne.Name, buildTSNE)
	r.Register(umap.Name, buildUMAP)
}

// buildTSNE creates a t-SNE reducer. Zero-valued settings keep the package defaults.
func buildTSNE(s domain.ReductionSettings) (driven.Reducer, error) {
	opts := []tsne.Option{tsne.WithSeed(s.Seed)}
	if s.TSNE.Perplexity > 0 {
		opts = append(opts, tsne.WithPerplexity(s.TSNE.Perplexity))
	}
	if s.TSNE.LearningRate > 0 {
		opts = append(opts, tsne.WithLearningRate(s.TSNE.LearningRate))
	}
	if s.TSNE.MaxIter > 0 {
		opts = append(opts, tsne.WithMaxIter(s.TSNE.MaxIter))
	}
	return tsne.New(opts...), nil
}

// buildUMAP creates a UMAP reducer. Zero-valued settings keep the package defaults.
func buildUMAP(s domain.ReductionSettings) (driven.Reducer, error) {
	opts := []umap.Option{umap.WithSeed(s.Seed)}
	if s.UMAP.Neighbors > 0 {
		opts = append(opts, umap.WithNeighbors(s.UMAP.Neighbors))
	}
	if s.UMAP.MinDist > 0 {
		opts = append(opts, umap.WithMinDist(s.UMAP.MinDist))
	}
	if s.UMAP.Spread > 0 {
		opts = append(opts, umap.WithSpread(s.UMAP.Spread))
	}
	if s.UMAP.Epochs > 0 {
		opts = append(opts, umap.WithEpochs(s.UMAP.Epochs))
	}
	reducer, err := umap.New(opts...)
	if err != nil {
		return nil, err
	}
	return reducer, nil
}
