// Package ai provides factory functions for creating embedding service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/papermap/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/papermap/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/papermap/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/papermap/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/papermap/internal/adapters/driven/embedding/tfidf"
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 10 * time.Second

// CreateEmbeddingService creates the embedding service for the configured provider.
// When RequestsPerSecond is set the service is wrapped in a rate limiter.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidInput)
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.ProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.ProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings)

	case domain.ProviderGemini:
		svc, err = createGeminiEmbedding(ctx, settings)

	case domain.ProviderTFIDF:
		svc = tfidf.NewEmbeddingService(tfidf.Config{})

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	if settings.RequestsPerSecond > 0 {
		logger.Debug("embedding: throttled to %.2f requests/s", settings.RequestsPerSecond)
		svc = ratelimit.Wrap(svc, settings.RequestsPerSecond)
	}
	return svc, nil
}

// PingEmbeddingService checks the service can be used, bounded by pingTimeout.
// Failures wrap domain.ErrEmbeddingUnavailable.
func PingEmbeddingService(ctx context.Context, svc driven.EmbeddingService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: model %s: %w", domain.ErrEmbeddingUnavailable, svc.ModelName(), err)
	}
	return nil
}

// ValidateEmbeddingConfig creates a service for the settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return PingEmbeddingService(ctx, svc)
}

func timeout(settings *domain.EmbeddingSettings) time.Duration {
	return time.Duration(settings.TimeoutSeconds) * time.Second
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Timeout:    timeout(settings),
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: timeout(settings),
	})
}

// createGeminiEmbedding creates a Gemini embedding service.
func createGeminiEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
		Timeout: timeout(settings),
	})
}
