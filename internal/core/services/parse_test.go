package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

type parseMockScraper struct {
	papers []domain.Paper
	err    error
	source string
}

func (m *parseMockScraper) Scrape(_ context.Context, source string) ([]domain.Paper, error) {
	m.source = source
	return m.papers, m.err
}

type parseMockSink struct {
	path   string
	papers []domain.Paper
	err    error
}

func (m *parseMockSink) Save(_ context.Context, path string, papers []domain.Paper) error {
	m.path = path
	m.papers = papers
	return m.err
}

func TestParseService_Parse(t *testing.T) {
	scraper := &parseMockScraper{papers: []domain.Paper{{Title: "A"}, {ID: 1, Title: "B"}}}
	sink := &parseMockSink{}

	n, err := NewParseService(scraper, sink).Parse(context.Background(), "page.html", "out.csv")
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, "page.html", scraper.source)
	assert.Equal(t, "out.csv", sink.path)
	assert.Equal(t, scraper.papers, sink.papers)
}

func TestParseService_Parse_DefaultDestination(t *testing.T) {
	sink := &parseMockSink{}

	_, err := NewParseService(&parseMockScraper{}, sink).Parse(context.Background(), "", "")
	require.NoError(t, err)

	assert.Equal(t, DefaultParseOutput, sink.path)
}

func TestParseService_Parse_EmptyListingStillWrites(t *testing.T) {
	buf := captureLog(t)
	sink := &parseMockSink{}

	n, err := NewParseService(&parseMockScraper{}, sink).Parse(context.Background(), "x.html", "out.csv")
	require.NoError(t, err)

	assert.Zero(t, n)
	assert.Equal(t, "out.csv", sink.path)
	assert.Contains(t, buf.String(), "No papers found")
}

func TestParseService_Parse_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewParseService(&parseMockScraper{err: boom}, &parseMockSink{}).Parse(context.Background(), "u", "o")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "scrape")

	sink := &parseMockSink{err: boom}
	_, err = NewParseService(&parseMockScraper{}, sink).Parse(context.Background(), "u", "o")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "write table")

	_, err = NewParseService(nil, sink).Parse(context.Background(), "u", "o")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
