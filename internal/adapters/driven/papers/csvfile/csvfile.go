// Package csvfile reads and writes the accepted papers table as CSV.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
	"github.com/custodia-labs/papermap/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.PaperSource = (*Store)(nil)
	_ driven.PaperSink   = (*Store)(nil)
)

// Header is the column layout written by Save.
var Header = []string{"Title", "Authors", "Poster Session", "Location", "URL"}

// columnCandidates lists accepted header names per field, matched case-insensitively.
var columnCandidates = struct {
	Title, Authors, Session, Location, URL []string
}{
	Title:    []string{"title"},
	Authors:  []string{"authors", "author"},
	Session:  []string{"poster session", "session"},
	Location: []string{"location"},
	URL:      []string{"url", "link"},
}

// Store is the CSV implementation of the paper table ports.
type Store struct{}

// NewStore creates a CSV paper store.
func NewStore() *Store {
	return &Store{}
}

// Load reads the table at path. Rows whose title is blank are skipped;
// every other row keeps its zero-based data row position as ID.
func (s *Store) Load(ctx context.Context, path string) ([]domain.Paper, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	header := make([]string, len(headerRow))
	for i, cell := range headerRow {
		header[i] = cleanCell(cell)
	}

	titleCol := findColumn(header, columnCandidates.Title)
	if titleCol < 0 {
		return nil, fmt.Errorf("%w: %s has no Title column (header: %s)",
			domain.ErrInvalidInput, filepath.Base(path), strings.Join(header, ", "))
	}
	authorsCol := findColumn(header, columnCandidates.Authors)
	sessionCol := findColumn(header, columnCandidates.Session)
	locationCol := findColumn(header, columnCandidates.Location)
	urlCol := findColumn(header, columnCandidates.URL)

	var papers []domain.Paper
	skipped := 0
	for row := 0; ; row++ {
		if row%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}

		title := cell(record, titleCol)
		if title == "" {
			skipped++
			continue
		}
		papers = append(papers, domain.Paper{
			ID:       row,
			Title:    title,
			Authors:  cell(record, authorsCol),
			Session:  cell(record, sessionCol),
			Location: cell(record, locationCol),
			URL:      cell(record, urlCol),
		})
	}

	logger.Debug("csv: %d papers loaded from %s, %d rows without title skipped", len(papers), path, skipped)
	return papers, nil
}

// Save writes papers with the standard header, creating parent directories.
func (s *Store) Save(ctx context.Context, path string, papers []domain.Paper) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range papers {
		if err := w.Write([]string{p.Title, p.Authors, p.Session, p.Location, p.URL}); err != nil {
			return fmt.Errorf("write paper %d: %w", p.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return cleanCell(record[col])
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}
