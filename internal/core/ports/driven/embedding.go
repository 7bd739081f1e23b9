package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Gemini (text-embedding-004)
//   - An offline TF-IDF model
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	// Zero means the size is only known after the first batch.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the model is reachable and loaded without embedding the corpus.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CorpusPreparer is implemented by embedders whose model depends on the whole
// corpus (for example TF-IDF vocabularies). Prepare is called once with every
// text before the first batch is embedded.
type CorpusPreparer interface {
	Prepare(ctx context.Context, corpus []string) error
}
