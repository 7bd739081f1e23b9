// Package tfidf provides an offline TF-IDF embedding service.
// Vectors depend only on the corpus, so runs are reproducible without a model server.
package tfidf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusPreparer   = (*EmbeddingService)(nil)
)

// ModelName is reported as the model of every TF-IDF run.
const ModelName = "tfidf"

// DefaultMaxFeatures caps the vocabulary to the most frequent terms.
const DefaultMaxFeatures = 4096

// errNotPrepared is returned when embedding before Prepare.
var errNotPrepared = errors.New("tfidf: embedder not prepared")

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Config holds configuration for the TF-IDF embedding service.
type Config struct {
	// MaxFeatures caps the vocabulary size (default: 4096).
	MaxFeatures int
}

// EmbeddingService is a smoothed TF-IDF vectoriser with L2-normalised output.
type EmbeddingService struct {
	mu          sync.RWMutex
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
	stopwords   map[string]struct{}
}

// NewEmbeddingService creates an unprepared TF-IDF embedder.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultMaxFeatures
	}
	return &EmbeddingService{
		maxFeatures: cfg.MaxFeatures,
		stopwords:   defaultStopwords(),
	}
}

// Prepare builds the vocabulary and IDF weights from the corpus.
// Terms are ranked by document frequency, ties broken alphabetically,
// and the vocabulary is ordered alphabetically for stable vectors.
func (s *EmbeddingService) Prepare(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("tfidf: empty corpus")
	}

	df := make(map[string]int)
	for i, text := range corpus {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		seen := make(map[string]struct{})
		for _, tok := range s.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return fmt.Errorf("tfidf: no tokens found in corpus")
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > s.maxFeatures {
		terms = terms[:s.maxFeatures]
	}
	sort.Strings(terms)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.vocabulary = make(map[string]int, len(terms))
	s.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		s.vocabulary[term] = i
		// Smoothed IDF
		s.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return nil
}

// Embed computes the TF-IDF vector for one text.
// Texts without known terms map to the zero vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.vocabulary == nil {
		return nil, errNotPrepared
	}

	tf := make(map[int]int)
	total := 0
	for _, tok := range s.tokenize(text) {
		if idx, ok := s.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}

	vec := make([]float64, len(s.idf))
	if total == 0 {
		return make([]float32, len(vec)), nil
	}
	var sumSq float64
	for idx, count := range tf {
		v := float64(count) / float64(total) * s.idf[idx]
		vec[idx] = v
		sumSq += v * v
	}

	norm := math.Sqrt(sumSq)
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vocabulary size, or zero before Prepare.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idf)
}

// ModelName returns "tfidf".
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize applies NFKC folding, lowercases and drops stop words.
func (s *EmbeddingService) tokenize(text string) []string {
	folded := strings.ToLower(norm.NFKC.String(text))
	raw := tokenPattern.FindAllString(folded, -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "be", "it", "its", "this", "that", "from", "into", "via",
		"towards", "toward", "through", "using", "than", "over", "under", "beyond", "without",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
