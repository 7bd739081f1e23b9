// Package cli provides the papermap command-line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermap/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "papermap",
	Short: "Map conference papers by title similarity",
	Long: `papermap embeds the titles of accepted conference papers, projects them
to two dimensions with t-SNE and UMAP, and writes a JSON data file and a
PNG scatter plot per projection for the interactive paper map.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"TOML config file (default ./"+file.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug output")
}

// Execute runs the root command. Cancelling ctx stops a running pipeline.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// loadConfig resolves configuration from the config file, the environment
// and any overrides.
func loadConfig(overrides ...file.Override) (*domain.PipelineConfig, string, error) {
	loader := file.NewLoader(configPath)
	cfg, err := loader.Load(overrides...)
	if err != nil {
		return nil, "", err
	}
	return cfg, loader.Source(), nil
}
