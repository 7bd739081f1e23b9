package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermap/internal/core/domain"
)

func TestWriteRecords_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tsne_papers.json")
	records := []domain.VisualizationRecord{
		{ID: 0, Title: "Zoë & <Friends>", Authors: "Ana", X: 0, Y: 1},
		{ID: 2, Title: "B", X: 1, Y: 0.25},
	}

	require.NoError(t, NewWriter().WriteRecords(context.Background(), path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "[\n  {\n    \"id\": 0,\n    \"title\": "))
	assert.Contains(t, text, `"title": "Zoë & <Friends>"`)
	assert.Contains(t, text, `"session": ""`)
	assert.True(t, strings.HasSuffix(text, "]\n"))

	var back []domain.VisualizationRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, records, back)
}

func TestWriteRecords_FieldOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, NewWriter().WriteRecords(context.Background(), path,
		[]domain.VisualizationRecord{{ID: 1, Title: "T"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	order := []string{`"id"`, `"title"`, `"authors"`, `"session"`, `"location"`, `"url"`, `"x"`, `"y"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, key)
		last = idx
	}
}

func TestWriteRecords_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, NewWriter().WriteRecords(context.Background(), path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteRecords_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewWriter().WriteRecords(context.Background(), filepath.Join(blocker, "out.json"), nil)

	assert.Error(t, err)
}
