package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that turns titles into vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// ProviderOllama is a local Ollama instance.
	ProviderOllama EmbeddingProvider = "ollama"

	// ProviderOpenAI is the OpenAI cloud API.
	ProviderOpenAI EmbeddingProvider = "openai"

	// ProviderGemini is the Google Gemini API.
	ProviderGemini EmbeddingProvider = "gemini"

	// ProviderTFIDF is the offline term-frequency embedder.
	ProviderTFIDF EmbeddingProvider = "tfidf"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderGemini, ProviderTFIDF:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI || p == ProviderGemini
}

// IsLocal returns true if this provider runs without a network service.
func (p EmbeddingProvider) IsLocal() bool {
	return p == ProviderTFIDF
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case ProviderOllama:
		return "Ollama (local server)"
	case ProviderOpenAI:
		return "OpenAI (cloud)"
	case ProviderGemini:
		return "Gemini (cloud)"
	case ProviderTFIDF:
		return "TF-IDF (offline)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every supported provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{ProviderOllama, ProviderOpenAI, ProviderGemini, ProviderTFIDF}
}

// DefaultEmbeddingModels returns default models for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		ProviderOllama: "all-minilm",
		ProviderOpenAI: "text-embedding-3-small",
		ProviderGemini: "text-embedding-004",
		ProviderTFIDF:  "tfidf",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider `toml:"provider" env:"PROVIDER"`

	// Model is the embedding model name.
	Model string `toml:"model" env:"MODEL"`

	// BaseURL is the API endpoint. Empty means the provider default.
	BaseURL string `toml:"base_url" env:"BASE_URL"`

	// APIKey is the API key (for OpenAI and Gemini).
	APIKey string `toml:"api_key" env:"API_KEY"`

	// BatchSize is the number of titles sent per request.
	BatchSize int `toml:"batch_size" env:"BATCH_SIZE"`

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64 `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`

	// TimeoutSeconds bounds a single provider request.
	TimeoutSeconds int `toml:"timeout_seconds" env:"TIMEOUT_SECONDS"`
}

// TSNESettings holds t-SNE parameters.
type TSNESettings struct {
	Perplexity float64 `toml:"perplexity" env:"PERPLEXITY"`

	// LearningRate of zero selects max(n/48, 50).
	LearningRate float64 `toml:"learning_rate" env:"LEARNING_RATE"`

	MaxIter int `toml:"max_iter" env:"MAX_ITER"`
}

// UMAPSettings holds UMAP parameters.
type UMAPSettings struct {
	Neighbors int     `toml:"neighbors" env:"NEIGHBORS"`
	MinDist   float64 `toml:"min_dist" env:"MIN_DIST"`
	Spread    float64 `toml:"spread" env:"SPREAD"`

	// Epochs of zero selects 500 for up to 10000 points and 200 beyond.
	Epochs int `toml:"epochs" env:"EPOCHS"`
}

// ReductionSettings holds dimensionality reduction configuration.
type ReductionSettings struct {
	// Seed makes every reducer deterministic for a given input.
	Seed int64 `toml:"seed" env:"SEED"`

	// Algorithms lists the reducers to run, in order.
	Algorithms []string `toml:"algorithms" env:"ALGORITHMS" envSeparator:","`

	TSNE TSNESettings `toml:"tsne" envPrefix:"TSNE_"`
	UMAP UMAPSettings `toml:"umap" envPrefix:"UMAP_"`
}

// PlotSettings holds scatter plot rendering configuration.
type PlotSettings struct {
	Title    string  `toml:"title" env:"TITLE"`
	XLabel   string  `toml:"x_label" env:"X_LABEL"`
	YLabel   string  `toml:"y_label" env:"Y_LABEL"`
	WidthIn  float64 `toml:"width_in" env:"WIDTH_IN"`
	HeightIn float64 `toml:"height_in" env:"HEIGHT_IN"`
	DPI      int     `toml:"dpi" env:"DPI"`
}

// ExportSettings holds optional run export configuration.
type ExportSettings struct {
	// SQLitePath is the database that receives every run. Empty disables export.
	SQLitePath string `toml:"sqlite_path" env:"SQLITE_PATH"`
}

// PipelineConfig is the full configuration of one pipeline run.
// Every field can be overridden independently.
type PipelineConfig struct {
	InputPath string `toml:"input_path" env:"INPUT_PATH"`
	OutputDir string `toml:"output_dir" env:"OUTPUT_DIR"`

	Embedding EmbeddingSettings `toml:"embedding" envPrefix:"EMBEDDING_"`
	Reduction ReductionSettings `toml:"reduction" envPrefix:"REDUCTION_"`
	Plot      PlotSettings      `toml:"plot" envPrefix:"PLOT_"`
	Export    ExportSettings    `toml:"export" envPrefix:"EXPORT_"`
}

// Default pipeline values.
const (
	DefaultInputPath = "cvpr_parser/cvpr_papers.csv"
	DefaultOutputDir = "paper_map_data"
	DefaultBatchSize = 32
	DefaultSeed      = 42
	DefaultPlotTitle = "CVPR 2025 Papers Map"
)

// DefaultAlgorithms returns the reducers run when none are configured.
func DefaultAlgorithms() []string {
	return []string{"tsne", "umap"}
}

// DefaultPipelineConfig returns the configuration that reproduces the fixed
// layout of the original tool: CSV from the parser directory, outputs in
// paper_map_data, MiniLM embeddings, t-SNE then UMAP with seed 42.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		InputPath: DefaultInputPath,
		OutputDir: DefaultOutputDir,
		Embedding: EmbeddingSettings{
			Provider:       ProviderOllama,
			Model:          DefaultEmbeddingModels()[ProviderOllama],
			BatchSize:      DefaultBatchSize,
			TimeoutSeconds: 60,
		},
		Reduction: ReductionSettings{
			Seed:       DefaultSeed,
			Algorithms: DefaultAlgorithms(),
			TSNE: TSNESettings{
				Perplexity: 30,
				MaxIter:    1000,
			},
			UMAP: UMAPSettings{
				Neighbors: 15,
				MinDist:   0.1,
				Spread:    1.0,
			},
		},
		Plot: PlotSettings{
			Title:    DefaultPlotTitle,
			XLabel:   "Dimension 1",
			YLabel:   "Dimension 2",
			WidthIn:  12,
			HeightIn: 10,
			DPI:      300,
		},
	}
}

// Validate reports the first configuration problem found.
// Algorithm names are checked by the reducer registry, not here.
func (c *PipelineConfig) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("%w: input path is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is empty", ErrInvalidInput)
	}
	if !c.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Embedding.Provider)
	}
	if c.Embedding.Provider.RequiresAPIKey() && c.Embedding.APIKey == "" {
		return fmt.Errorf("%w: %s requires an API key", ErrInvalidInput, c.Embedding.Provider)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidInput, c.Embedding.BatchSize)
	}
	if c.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidInput)
	}
	if len(c.Reduction.Algorithms) == 0 {
		return fmt.Errorf("%w: no reduction algorithms configured", ErrInvalidInput)
	}
	if c.Plot.WidthIn <= 0 || c.Plot.HeightIn <= 0 || c.Plot.DPI <= 0 {
		return fmt.Errorf("%w: plot size and dpi must be positive", ErrInvalidInput)
	}
	return nil
}

// Redacted returns a copy with secrets masked, suitable for printing.
func (c PipelineConfig) Redacted() PipelineConfig {
	if c.Embedding.APIKey != "" {
		c.Embedding.APIKey = "********"
	}
	c.Reduction.Algorithms = append([]string(nil), c.Reduction.Algorithms...)
	return c
}
