package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/logger"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

func TestNormalizePoints(t *testing.T) {
	points := []domain.Point{{X: -2, Y: 10}, {X: 0, Y: 30}, {X: 6, Y: 20}}

	got := NormalizePoints(points)

	require.Len(t, got, 3)
	assert.InDelta(t, 0.0, got[0].X, 1e-12)
	assert.InDelta(t, 0.25, got[1].X, 1e-12)
	assert.InDelta(t, 1.0, got[2].X, 1e-12)
	assert.InDelta(t, 0.0, got[0].Y, 1e-12)
	assert.InDelta(t, 1.0, got[1].Y, 1e-12)
	assert.InDelta(t, 0.5, got[2].Y, 1e-12)

	assert.Equal(t, -2.0, points[0].X, "input is not modified")
}

func TestNormalizePoints_Bounds(t *testing.T) {
	points := []domain.Point{{X: 3.3, Y: -1}, {X: 1e6, Y: 4}, {X: -7, Y: 4}, {X: 12, Y: 0}}

	for _, p := range NormalizePoints(points) {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.LessOrEqual(t, p.X, 1.0)
		assert.GreaterOrEqual(t, p.Y, 0.0)
		assert.LessOrEqual(t, p.Y, 1.0)
	}
}

func TestNormalizePoints_ZeroRangeAxis(t *testing.T) {
	buf := captureLog(t)
	points := []domain.Point{{X: 5, Y: 1}, {X: 5, Y: 3}}

	got := NormalizePoints(points)

	assert.Equal(t, []domain.Point{{X: 0.5, Y: 0}, {X: 0.5, Y: 1}}, got)
	assert.Contains(t, buf.String(), "[WARN] x axis has no spread")
	assert.NotContains(t, buf.String(), "y axis")
}

func TestNormalizePoints_SinglePoint(t *testing.T) {
	captureLog(t)

	got := NormalizePoints([]domain.Point{{X: 9, Y: -9}})

	assert.Equal(t, []domain.Point{{X: 0.5, Y: 0.5}}, got)
}

func TestNormalizePoints_Empty(t *testing.T) {
	assert.Empty(t, NormalizePoints(nil))
}

func TestFormatRecords(t *testing.T) {
	papers := []domain.Paper{
		{ID: 0, Title: "A", Authors: "X, Y", Session: "Poster Session 1", Location: "ExHall D Poster #3", URL: "https://a"},
		{ID: 3, Title: "B"},
	}
	points := []domain.Point{{X: 1, Y: 1}, {X: 3, Y: 5}}

	records, err := FormatRecords(papers, points)
	require.NoError(t, err)

	assert.Equal(t, []domain.VisualizationRecord{
		{ID: 0, Title: "A", Authors: "X, Y", Session: "Poster Session 1", Location: "ExHall D Poster #3", URL: "https://a", X: 0, Y: 0},
		{ID: 3, Title: "B", X: 1, Y: 1},
	}, records)
}

func TestFormatRecords_LengthMismatch(t *testing.T) {
	_, err := FormatRecords([]domain.Paper{{Title: "A"}}, []domain.Point{{}, {}})

	require.ErrorIs(t, err, domain.ErrLengthMismatch)
	assert.Contains(t, err.Error(), "1 papers but 2 points")
}
