// Package jsonfile writes visualisation records as an indented JSON array.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/papermap/internal/core/domain"
	"github.com/custodia-labs/papermap/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.RecordWriter = (*Writer)(nil)

// indent matches the layout the map front-end was built against.
const indent = "  "

// Writer writes records as UTF-8 JSON. Non-ASCII text and HTML
// characters are written literally, not escaped.
type Writer struct{}

// NewWriter creates a JSON record writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteRecords writes records to path, creating parent directories.
// A nil slice is written as an empty array.
func (w *Writer) WriteRecords(ctx context.Context, path string, records []domain.VisualizationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if records == nil {
		records = []domain.VisualizationRecord{}
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
