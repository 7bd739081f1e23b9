package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/core/ports/driving"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// Output file suffixes; the algorithm name is the prefix.
const (
	DataFileSuffix = "_papers.json"
	PlotFileSuffix = "_papers.png"
)

// PipelineService turns the papers table into one map per reducer.
type PipelineService struct {
	config   domain.PipelineConfig
	source   driven.PaperSource
	embedder driven.EmbeddingService
	registry driven.ReducerRegistry
	writer   driven.RecordWriter
	renderer driven.PlotRenderer
	exporter driven.RunExporter

	now func() time.Time
}

// NewPipelineService creates a pipeline service.
// The exporter is optional; when nil, runs are not exported.
func NewPipelineService(
	config domain.PipelineConfig,
	source driven.PaperSource,
	embedder driven.EmbeddingService,
	registry driven.ReducerRegistry,
	writer driven.RecordWriter,
	renderer driven.PlotRenderer,
	exporter driven.RunExporter,
) *PipelineService {
	return &PipelineService{
		config:   config,
		source:   source,
		embedder: embedder,
		registry: registry,
		writer:   writer,
		renderer: renderer,
		exporter: exporter,
		now:      time.Now,
	}
}

// OutputPaths returns the data and plot files written for algorithm.
func OutputPaths(outputDir, algorithm string) (dataPath, plotPath string) {
	return filepath.Join(outputDir, algorithm+DataFileSuffix),
		filepath.Join(outputDir, algorithm+PlotFileSuffix)
}

// Run executes every stage in order and stops at the first failure.
// Files already written by earlier projections are left in place.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (s *PipelineService) Run(ctx context.Context) (*domain.Run, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.source == nil || s.embedder == nil || s.registry == nil || s.writer == nil || s.renderer == nil {
		return nil, fmt.Errorf("%w: pipeline is missing a component", domain.ErrInvalidInput)
	}

	run := &domain.Run{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		InputPath: s.config.InputPath,
		OutputDir: s.config.OutputDir,
		Provider:  s.config.Embedding.Provider.String(),
		Model:     s.embedder.ModelName(),
		Seed:      s.config.Reduction.Seed,
	}

	// 1. Resolve reducers before any expensive work
	reducers, err := s.registry.BuildAll(s.config.Reduction.Algorithms, s.config.Reduction)
	if err != nil {
		return nil, fmt.Errorf("build reducers: %w", err)
	}

	// 2. Check the embedder is reachable
	logger.Section("Embedder")
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, run.Model, err)
	}
	logger.Info("Using %s model %s", run.Provider, run.Model)

	// 3. Load papers
	logger.Section("Load")
	logger.Info("Loading data from %s", s.config.InputPath)
	papers, err := s.source.Load(ctx, s.config.InputPath)
	if err != nil {
		return nil, fmt.Errorf("load papers: %w", err)
	}
	if len(papers) == 0 {
		return nil, fmt.Errorf("load papers: %w: no titled papers in %s", domain.ErrEmptyInput, s.config.InputPath)
	}
	run.Papers = papers
	logger.Info("Loaded %d papers", len(papers))

	// 4. Embed titles
	logger.Section("Embed")
	vectors, err := s.embed(ctx, domain.Titles(papers))
	if err != nil {
		return nil, fmt.Errorf("embed titles: %w", err)
	}
	run.Dimensions = len(vectors[0])
	logger.Info("Generated embeddings of shape (%d, %d)", len(vectors), run.Dimensions)

	// 5. One projection per reducer
	for _, reducer := range reducers {
		proj, err := s.project(ctx, reducer, papers, vectors)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", reducer.Name(), err)
		}
		run.Projections = append(run.Projections, *proj)
	}
	run.CompletedAt = s.now()

	// 6. Optional export
	if s.exporter != nil {
		logger.Section("Export")
		if err := s.exporter.ExportRun(ctx, run); err != nil {
			return nil, fmt.Errorf("export run: %w", err)
		}
		logger.Info("Exported run %s", run.ID)
	}

	return run, nil
}

// embed sends titles in batches and checks every vector has the same width.
func (s *PipelineService) embed(ctx context.Context, titles []string) ([][]float32, error) {
	if preparer, ok := s.embedder.(driven.CorpusPreparer); ok {
		if err := preparer.Prepare(ctx, titles); err != nil {
			return nil, fmt.Errorf("prepare corpus: %w", err)
		}
	}

	batchSize := s.config.Embedding.BatchSize
	vectors := make([][]float32, 0, len(titles))
	for start := 0; start < len(titles); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchSize, len(titles))

		batch, err := s.embedder.EmbedBatch(ctx, titles[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: batch %d-%d returned %d vectors for %d titles",
				domain.ErrLengthMismatch, start, end, len(batch), end-start)
		}
		vectors = append(vectors, batch...)
		logger.Progress("Embedding", len(vectors), len(titles))
	}

	width := len(vectors[0])
	if width == 0 {
		return nil, errors.New("embedder returned empty vectors")
	}
	for i, v := range vectors {
		if len(v) != width {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrDimensionMismatch, i, len(v), width)
		}
	}
	return vectors, nil
}

func (s *PipelineService) project(
	ctx context.Context,
	reducer driven.Reducer,
	papers []domain.Paper,
	vectors [][]float32,
) (*domain.Projection, error) {
	name := reducer.Name()
	logger.Section("Reduce: " + name)

	points, err := reducer.Reduce(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	logger.Info("Reduced dimensions to shape (%d, 2)", len(points))

	records, err := FormatRecords(papers, points)
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}

	dataPath, plotPath := OutputPaths(s.config.OutputDir, name)
	if err := s.writer.WriteRecords(ctx, dataPath, records); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}
	logger.Info("Data saved to %s", dataPath)

	if err := s.renderer.RenderScatter(ctx, plotPath, points); err != nil {
		return nil, fmt.Errorf("write plot: %w", err)
	}
	logger.Info("Plot saved to %s", plotPath)

	return &domain.Projection{
		Algorithm: name,
		Points:    points,
		Records:   records,
		DataPath:  dataPath,
		PlotPath:  plotPath,
	}, nil
}
