package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEmbeddingProvider_IsValid tests all valid and invalid providers
func TestEmbeddingProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider EmbeddingProvider
		expected bool
	}{
		{name: "ollama is valid", provider: ProviderOllama, expected: true},
		{name: "openai is valid", provider: ProviderOpenAI, expected: true},
		{name: "gemini is valid", provider: ProviderGemini, expected: true},
		{name: "tfidf is valid", provider: ProviderTFIDF, expected: true},
		{name: "empty string is invalid", provider: EmbeddingProvider(""), expected: false},
		{name: "anthropic is invalid", provider: EmbeddingProvider("anthropic"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestEmbeddingProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, ProviderOllama.RequiresAPIKey())
	assert.True(t, ProviderOpenAI.RequiresAPIKey())
	assert.True(t, ProviderGemini.RequiresAPIKey())
	assert.False(t, ProviderTFIDF.RequiresAPIKey())
}

func TestEmbeddingProvider_Description(t *testing.T) {
	for _, p := range AllEmbeddingProviders() {
		assert.NotEqual(t, unknownDescription, p.Description(), p)
	}
	assert.Equal(t, unknownDescription, EmbeddingProvider("x").Description())
}

func TestDefaultEmbeddingModels_CoverAllProviders(t *testing.T) {
	models := DefaultEmbeddingModels()
	for _, p := range AllEmbeddingProviders() {
		assert.NotEmpty(t, models[p], p)
	}
	assert.Equal(t, 384, EmbeddingDimensions()[models[ProviderOllama]])
}

func TestDefaultPipelineConfig(t *testing.T) {
	cfg := DefaultPipelineConfig()

	assert.Equal(t, "cvpr_parser/cvpr_papers.csv", cfg.InputPath)
	assert.Equal(t, "paper_map_data", cfg.OutputDir)
	assert.Equal(t, ProviderOllama, cfg.Embedding.Provider)
	assert.Equal(t, 32, cfg.Embedding.BatchSize)
	assert.Equal(t, int64(42), cfg.Reduction.Seed)
	assert.Equal(t, []string{"tsne", "umap"}, cfg.Reduction.Algorithms)
	assert.Equal(t, 30.0, cfg.Reduction.TSNE.Perplexity)
	assert.Equal(t, 15, cfg.Reduction.UMAP.Neighbors)
	assert.Equal(t, "CVPR 2025 Papers Map", cfg.Plot.Title)
	assert.Equal(t, "Dimension 1", cfg.Plot.XLabel)
	assert.Equal(t, "Dimension 2", cfg.Plot.YLabel)
	assert.Equal(t, 12.0, cfg.Plot.WidthIn)
	assert.Equal(t, 10.0, cfg.Plot.HeightIn)
	assert.Equal(t, 300, cfg.Plot.DPI)
	assert.Empty(t, cfg.Export.SQLitePath)

	require.NoError(t, cfg.Validate())
}

func TestPipelineConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PipelineConfig)
		wantErr error
	}{
		{
			name:    "empty input path",
			mutate:  func(c *PipelineConfig) { c.InputPath = "  " },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "empty output dir",
			mutate:  func(c *PipelineConfig) { c.OutputDir = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *PipelineConfig) { c.Embedding.Provider = "bert" },
			wantErr: ErrUnsupportedProvider,
		},
		{
			name:    "openai without key",
			mutate:  func(c *PipelineConfig) { c.Embedding.Provider = ProviderOpenAI },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *PipelineConfig) { c.Embedding.BatchSize = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative rate",
			mutate:  func(c *PipelineConfig) { c.Embedding.RequestsPerSecond = -1 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "no algorithms",
			mutate:  func(c *PipelineConfig) { c.Reduction.Algorithms = nil },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero dpi",
			mutate:  func(c *PipelineConfig) { c.Plot.DPI = 0 },
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPipelineConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestPipelineConfig_Redacted(t *testing.T) {
	cfg := DefaultPipelineConfig()
	cfg.Embedding.APIKey = "sk-secret"

	red := cfg.Redacted()
	red.Reduction.Algorithms[0] = "changed"

	assert.Equal(t, "********", red.Embedding.APIKey)
	assert.Equal(t, "sk-secret", cfg.Embedding.APIKey)
	assert.Equal(t, "tsne", cfg.Reduction.Algorithms[0])
}
