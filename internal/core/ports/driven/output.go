package driven

import (
	"context"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

// RecordWriter persists the normalised records of one projection.
type RecordWriter interface {
	WriteRecords(ctx context.Context, path string, records []domain.VisualizationRecord) error
}

// PlotRenderer draws the raw points of one projection as an image.
type PlotRenderer interface {
	RenderScatter(ctx context.Context, path string, points []domain.Point) error
}

// RunExporter stores complete runs so projections can be compared later.
type RunExporter interface {
	ExportRun(ctx context.Context, run *domain.Run) error
	Close() error
}
