package driven

import (
	"context"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// PaperSource loads the accepted papers table.
type PaperSource interface {
	// Load returns the papers with a non-empty title, in file order.
	Load(ctx context.Context, path string) ([]domain.Paper, error)
}

// PaperSink writes papers back out as a table the PaperSource can read.
type PaperSink interface {
	Save(ctx context.Context, path string, papers []domain.Paper) error
}

// PaperScraper extracts papers from a conference listing page.
type PaperScraper interface {
	// Scrape reads a URL or a local file and returns the listed papers.
	Scrape(ctx context.Context, source string) ([]domain.Paper, error)
}
