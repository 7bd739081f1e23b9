package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermap/internal/adapters/driven/ai"
	"github.com/custodia-labs/papermap/internal/adapters/driven/config/file"
)

// embeddingValidator pings the configured provider. Tests replace it.
var embeddingValidator = ai.ValidateEmbeddingConfig

var configFlags struct {
	check bool
	write string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Prints the configuration "run" would use, after applying the config file,
the .env file and PAPERMAP_* environment variables. API keys are redacted.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configFlags.check, "check", false, "validate the configuration and ping the embedding provider")
	configCmd.Flags().StringVar(&configFlags.write, "write", "", "write the configuration to this TOML file (API key omitted)")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, source, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if configFlags.write != "" {
		out := *cfg
		out.Embedding.APIKey = ""
		if err := file.Save(configFlags.write, out); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		cmd.Printf("Configuration written to %s\n", configFlags.write)
		return nil
	}

	st := newStyles()
	if source == "" {
		cmd.Println(st.Muted.Render("# no config file; defaults and environment"))
	} else {
		cmd.Println(st.Muted.Render("# from " + source))
	}

	data, err := file.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	cmd.Print(string(data))

	if !configFlags.check {
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := embeddingValidator(cmd.Context(), &cfg.Embedding); err != nil {
		return err
	}
	cmd.Println(st.Success.Render(fmt.Sprintf("Embedding provider %s (%s) is reachable", cfg.Embedding.Provider, cfg.Embedding.Model)))
	return nil
}
