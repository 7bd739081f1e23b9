// Package ratelimit wraps an embedding service with a token bucket so hosted
// providers are not called faster than their quota allows.
package ratelimit

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusPreparer   = (*EmbeddingService)(nil)
)

// EmbeddingService throttles Embed and EmbedBatch calls of the wrapped service.
// Each call costs one token regardless of batch size.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// Wrap returns next throttled to requestsPerSecond. The burst allows that
// many requests back to back (at least one).
func Wrap(next driven.EmbeddingService, requestsPerSecond float64) *EmbeddingService {
	burst := max(1, int(math.Ceil(requestsPerSecond)))
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token, then embeds one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch waits for a token, then embeds the batch.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return s.next.EmbedBatch(ctx, texts)
}

// Prepare forwards to the wrapped service when it needs the corpus.
func (s *EmbeddingService) Prepare(ctx context.Context, corpus []string) error {
	if p, ok := s.next.(driven.CorpusPreparer); ok {
		return p.Prepare(ctx, corpus)
	}
	return nil
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.next.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.next.ModelName() }

// Ping is not throttled.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close closes the wrapped service.
func (s *EmbeddingService) Close() error { return s.next.Close() }
