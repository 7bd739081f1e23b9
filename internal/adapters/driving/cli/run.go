package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermap/internal/adapters/driven/ai"
	"github.com/custodia-labs/papermap/internal/adapters/driven/output/jsonfile"
	"github.com/custodia-labs/papermap/internal/adapters/driven/output/plot"
	"github.com/custodia-labs/papermap/internal/adapters/driven/papers/csvfile"
	"github.com/custodia-labs/papermap/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/core/ports/driving"
	"github.com/custodia-labs/papermap/internal/core/services"
	"github.com/custodia-labs/papermap/internal/reducers"
)

// completionMessage is printed once every output has been written.
const completionMessage = "Processing complete!"

// pipelineFactory builds the pipeline for a configuration. The returned
// cleanup releases the embedder and exporter.
var pipelineFactory = newPipeline

var runFlags struct {
	input      string
	outputDir  string
	provider   string
	model      string
	batchSize  int
	seed       int64
	algorithms []string
	sqlite     string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Embed, project and plot the papers table",
	Long: `Loads the papers table, embeds every title, and writes
<algorithm>_papers.json and <algorithm>_papers.png to the output directory
for each configured reducer (t-SNE then UMAP by default).`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runFlags.input, "input", "i", domain.DefaultInputPath, "papers CSV file")
	flags.StringVarP(&runFlags.outputDir, "output-dir", "o", domain.DefaultOutputDir, "directory for data files and plots")
	flags.StringVar(&runFlags.provider, "provider", string(domain.ProviderOllama), "embedding provider (ollama, openai, gemini, tfidf)")
	flags.StringVar(&runFlags.model, "model", "", "embedding model (default depends on provider)")
	flags.IntVar(&runFlags.batchSize, "batch-size", domain.DefaultBatchSize, "titles per embedding request")
	flags.Int64Var(&runFlags.seed, "seed", domain.DefaultSeed, "random seed for every reducer")
	flags.StringSliceVar(&runFlags.algorithms, "algorithms", domain.DefaultAlgorithms(), "reducers to run, in order")
	flags.StringVar(&runFlags.sqlite, "sqlite", "", "also export the run to this SQLite database")

	rootCmd.AddCommand(runCmd)
}

// runOverrides applies only the flags the user set, so config files and
// the environment keep precedence over flag defaults.
func runOverrides(cmd *cobra.Command) func(*domain.PipelineConfig) {
	return func(cfg *domain.PipelineConfig) {
		flags := cmd.Flags()
		if flags.Changed("input") {
			cfg.InputPath = runFlags.input
		}
		if flags.Changed("output-dir") {
			cfg.OutputDir = runFlags.outputDir
		}
		if flags.Changed("provider") {
			provider := domain.EmbeddingProvider(runFlags.provider)
			if provider != cfg.Embedding.Provider && !flags.Changed("model") {
				cfg.Embedding.Model = ""
			}
			cfg.Embedding.Provider = provider
		}
		if flags.Changed("model") {
			cfg.Embedding.Model = runFlags.model
		}
		if flags.Changed("batch-size") {
			cfg.Embedding.BatchSize = runFlags.batchSize
		}
		if flags.Changed("seed") {
			cfg.Reduction.Seed = runFlags.seed
		}
		if flags.Changed("algorithms") {
			cfg.Reduction.Algorithms = append([]string(nil), runFlags.algorithms...)
		}
		if flags.Changed("sqlite") {
			cfg.Export.SQLitePath = runFlags.sqlite
		}
	}
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig(runOverrides(cmd))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	pipeline, cleanup, err := pipelineFactory(ctx, *cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	run, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	printRunSummary(cmd, run)
	cmd.Println(completionMessage)
	return nil
}

func printRunSummary(cmd *cobra.Command, run *domain.Run) {
	st := newStyles()

	cmd.Println(st.Title.Render(fmt.Sprintf("Mapped %d papers", len(run.Papers))))
	cmd.Printf("%s %s/%s (%d dimensions)\n", st.Label.Render("Embeddings:"), run.Provider, run.Model, run.Dimensions)
	for _, proj := range run.Projections {
		cmd.Printf("%s %s, %s\n",
			st.Label.Render(proj.Algorithm+":"),
			st.Path.Render(proj.DataPath),
			st.Path.Render(proj.PlotPath))
	}
	cmd.Println(st.Muted.Render(fmt.Sprintf("Run %s finished in %s", run.ID, run.Duration().Round(time.Millisecond))))
}

// newPipeline wires the production adapters for cfg.
func newPipeline(ctx context.Context, cfg domain.PipelineConfig) (driving.PipelineService, func(), error) {
	embedder, err := ai.CreateEmbeddingService(ctx, &cfg.Embedding)
	if err != nil {
		return nil, nil, fmt.Errorf("create embedder: %w", err)
	}

	var exporter driven.RunExporter
	if cfg.Export.SQLitePath != "" {
		store, err := sqlite.NewStore(cfg.Export.SQLitePath)
		if err != nil {
			return nil, nil, errors.Join(fmt.Errorf("open export database: %w", err), embedder.Close())
		}
		exporter = store
	}

	cleanup := func() {
		_ = embedder.Close()
		if exporter != nil {
			_ = exporter.Close()
		}
	}

	svc := services.NewPipelineService(
		cfg,
		csvfile.NewStore(),
		embedder,
		reducers.NewDefaultRegistry(),
		jsonfile.NewWriter(),
		plot.NewRenderer(cfg.Plot),
		exporter,
	)
	return svc, cleanup, nil
}
