package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/core/ports/driving"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure ParseService implements the interface.
var _ driving.ParseService = (*ParseService)(nil)

// DefaultParseOutput is the table written when no destination is given.
const DefaultParseOutput = "cvpr_papers.csv"

// ParseService scrapes the accepted papers listing into a CSV table.
type ParseService struct {
	scraper driven.PaperScraper
	sink    driven.PaperSink
}

// NewParseService creates a parse service.
func NewParseService(scraper driven.PaperScraper, sink driven.PaperSink) *ParseService {
	return &ParseService{scraper: scraper, sink: sink}
}

// Parse scrapes source and writes the papers to dest.
// An empty dest writes DefaultParseOutput.
func (s *ParseService) Parse(ctx context.Context, source, dest string) (int, error) {
	if s.scraper == nil || s.sink == nil {
		return 0, fmt.Errorf("%w: parser is missing a component", domain.ErrInvalidInput)
	}
	if dest == "" {
		dest = DefaultParseOutput
	}

	papers, err := s.scraper.Scrape(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("scrape: %w", err)
	}
	if len(papers) == 0 {
		logger.Warn("No papers found in %s", source)
	}

	if err := s.sink.Save(ctx, dest, papers); err != nil {
		return 0, fmt.Errorf("write table: %w", err)
	}
	logger.Info("Parsed %d papers to %s", len(papers), dest)
	return len(papers), nil
}
