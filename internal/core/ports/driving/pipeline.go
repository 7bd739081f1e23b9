package driving

import (
	"context"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// PipelineService runs the paper map pipeline end to end.
type PipelineService interface {
	// Run loads, embeds, reduces, formats and writes every configured projection.
	// Any stage failure aborts the run.
	Run(ctx context.Context) (*domain.Run, error)
}

// ParseService converts a conference listing page into the papers table.
type ParseService interface {
	// Parse reads source (URL or file) and writes the table to dest.
	// It returns the number of papers written.
	Parse(ctx context.Context, source, dest string) (int, error)
}
