package services

import (
	"fmt"
	"math"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/logger"
)

// degenerateAxisValue is used when every point shares one coordinate.
const degenerateAxisValue = 0.5

// FormatRecords normalises points to the unit square and joins them to
// papers by position.
func FormatRecords(papers []domain.Paper, points []domain.Point) ([]domain.VisualizationRecord, error) {
	if len(papers) != len(points) {
		return nil, fmt.Errorf("%w: %d papers but %d points", domain.ErrLengthMismatch, len(papers), len(points))
	}

	normalised := NormalizePoints(points)
	records := make([]domain.VisualizationRecord, len(papers))
	for i, p := range papers {
		records[i] = domain.VisualizationRecord{
			ID:       p.ID,
			Title:    p.Title,
			Authors:  p.Authors,
			Session:  p.Session,
			Location: p.Location,
			URL:      p.URL,
			X:        normalised[i].X,
			Y:        normalised[i].Y,
		}
	}
	return records, nil
}

// NormalizePoints rescales each axis independently to [0, 1] using its
// minimum and maximum. An axis with zero range maps every value to 0.5.
func NormalizePoints(points []domain.Point) []domain.Point {
	out := make([]domain.Point, len(points))
	if len(points) == 0 {
		return out
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	xs = normalizeAxis("x", xs)
	ys = normalizeAxis("y", ys)

	for i := range out {
		out[i] = domain.Point{X: xs[i], Y: ys[i]}
	}
	return out
}

func normalizeAxis(name string, values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		logger.Warn("%s axis has no spread (min=%g, max=%g); placing every point at %g", name, lo, hi, degenerateAxisValue)
		for i := range values {
			values[i] = degenerateAxisValue
		}
		return values
	}

	for i, v := range values {
		values[i] = (v - lo) / span
	}
	return values
}
