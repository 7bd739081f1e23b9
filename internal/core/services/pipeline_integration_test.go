package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/adapters/driven/embedding/tfidf"
	"github.com/custodia-labs/papermap/internal/adapters/driven/output/jsonfile"
	"github.com/custodia-labs/papermap/internal/adapters/driven/output/plot"
	"github.com/custodia-labs/papermap/internal/adapters/driven/papers/csvfile"
	"github.com/custodia-labs/papermap/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/reducers"
)

// writePapersCSV writes a table with two topics and one untitled row.
func writePapersCSV(t *testing.T, path string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write([]string{"Title", "Authors", "Poster Session", "Location", "URL"}))
	for i := 0; i < 12; i++ {
		require.NoError(t, w.Write([]string{
			fmt.Sprintf("Neural radiance fields for scene %d reconstruction", i),
			"Ana Silva, Bo Chen", "Poster Session 1", fmt.Sprintf("ExHall D Poster #%d", i), "",
		}))
		if i == 5 {
			require.NoError(t, w.Write([]string{"", "Nobody", "", "", ""}))
		}
		require.NoError(t, w.Write([]string{
			fmt.Sprintf("Diffusion models for video %d generation", i),
			"Chidi Okafor", "Poster Session 2", "", "https://example.org/" + fmt.Sprint(i),
		}))
	}
	w.Flush()
	require.NoError(t, w.Error())
}

func TestPipelineService_Run_EndToEnd(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "cvpr_papers.csv")
	writePapersCSV(t, input)

	cfg := domain.DefaultPipelineConfig()
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(dir, "paper_map_data")
	cfg.Embedding.Provider = domain.ProviderTFIDF
	cfg.Embedding.Model = tfidf.ModelName
	cfg.Embedding.BatchSize = 5
	cfg.Reduction.TSNE.MaxIter = 250
	cfg.Reduction.UMAP.Epochs = 50
	cfg.Plot.WidthIn, cfg.Plot.HeightIn, cfg.Plot.DPI = 2, 2, 40

	store, err := sqlite.NewStore(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	svc := NewPipelineService(
		cfg,
		csvfile.NewStore(),
		tfidf.NewEmbeddingService(tfidf.Config{}),
		reducers.NewDefaultRegistry(),
		jsonfile.NewWriter(),
		plot.NewRenderer(cfg.Plot),
		store,
	)

	run, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, run.Papers, 24, "the untitled row is dropped")
	require.Len(t, run.Projections, 2)

	for _, alg := range []string{"tsne", "umap"} {
		dataPath, plotPath := OutputPaths(cfg.OutputDir, alg)

		raw, err := os.ReadFile(dataPath)
		require.NoError(t, err)
		var records []domain.VisualizationRecord
		require.NoError(t, json.Unmarshal(raw, &records))
		require.Len(t, records, 24, alg)

		minX, maxX, minY, maxY := 1.0, 0.0, 1.0, 0.0
		for i, r := range records {
			assert.Equal(t, run.Papers[i].ID, r.ID)
			minX, maxX = min(minX, r.X), max(maxX, r.X)
			minY, maxY = min(minY, r.Y), max(maxY, r.Y)
		}
		assert.InDelta(t, 0.0, minX, 1e-9, alg)
		assert.InDelta(t, 1.0, maxX, 1e-9, alg)
		assert.InDelta(t, 0.0, minY, 1e-9, alg)
		assert.InDelta(t, 1.0, maxY, 1e-9, alg)

		// Row 11 is untitled, so record 12 holds table row 13.
		assert.Equal(t, 13, records[12].ID)

		info, err := os.Stat(plotPath)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	runs, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, []string{"tsne", "umap"}, runs[0].Algorithms)
}

func TestPipelineService_Run_Deterministic(t *testing.T) {
	captureLog(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "cvpr_papers.csv")
	writePapersCSV(t, input)

	runOnce := func(outDir string) []byte {
		cfg := domain.DefaultPipelineConfig()
		cfg.InputPath = input
		cfg.OutputDir = outDir
		cfg.Embedding.Provider = domain.ProviderTFIDF
		cfg.Embedding.Model = tfidf.ModelName
		cfg.Reduction.Algorithms = []string{"umap"}
		cfg.Reduction.UMAP.Epochs = 50

		svc := NewPipelineService(cfg, csvfile.NewStore(), tfidf.NewEmbeddingService(tfidf.Config{}),
			reducers.NewDefaultRegistry(), jsonfile.NewWriter(), plot.NewRenderer(domain.PlotSettings{WidthIn: 1, HeightIn: 1, DPI: 20}), nil)
		_, err := svc.Run(context.Background())
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(outDir, "umap_papers.json"))
		require.NoError(t, err)
		return data
	}

	first := runOnce(filepath.Join(dir, "a"))
	second := runOnce(filepath.Join(dir, "b"))

	assert.Equal(t, string(first), string(second))
}
