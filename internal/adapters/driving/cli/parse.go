package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/papermap/internal/adapters/driven/papers/csvfile"
	"github.com/custodia-labs/papermap/internal/adapters/driven/papers/cvpr"
	"github.com/custodia-labs/papermap/internal/core/ports/driving"
	"github.com/custodia-labs/papermap/internal/core/services"
)

// parseServiceFactory builds the parse service. Tests replace it.
var parseServiceFactory = func() driving.ParseService {
	return services.NewParseService(cvpr.NewScraper(cvpr.Config{}), csvfile.NewStore())
}

var parseCmd = &cobra.Command{
	Use:   "parse [url-or-file] [output.csv]",
	Short: "Build the papers table from the accepted papers page",
	Long: `Scrapes the accepted papers listing into a CSV table that "run" can read.
The source is an http(s) URL or a saved HTML file; without one the
CVPR 2025 accepted papers page is fetched. The table is written to
cvpr_papers.csv unless an output path is given.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	var source, dest string
	if len(args) > 0 {
		source = args[0]
	}
	if len(args) > 1 {
		dest = args[1]
	}
	if dest == "" {
		dest = services.DefaultParseOutput
	}
	if source == "" {
		cmd.Printf("No input provided. Using default URL: %s\n", cvpr.DefaultURL)
	}

	n, err := parseServiceFactory().Parse(cmd.Context(), source, dest)
	if err != nil {
		return err
	}

	cmd.Printf("Successfully parsed %d papers to %s\n", n, dest)
	return nil
}
