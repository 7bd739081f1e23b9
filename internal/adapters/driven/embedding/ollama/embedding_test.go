package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, models []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			var resp tagsResponse
			for _, m := range models {
				resp.Models = append(resp.Models, struct {
					Name  string `json:"name"`
					Model string `json:"model"`
				}{Name: m, Model: m})
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/api/embed":
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Model != "all-minilm" {
				http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
				return
			}
			resp := embedResponse{Model: req.Model}
			for i, text := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float64{float64(i), float64(len(text)), 0.5})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultTimeout, s.client.Timeout)
	assert.Zero(t, s.Dimensions())
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	srv := newTestServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL + "/"})

	got, err := s.EmbedBatch(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, []float32{0, 1, 0.5}, got[0])
	assert.Equal(t, []float32{1, 3, 0.5}, got[1])
	assert.Equal(t, []float32{2, 2, 0.5}, got[2])
	assert.Equal(t, 3, s.Dimensions())
}

func TestEmbedBatch_Empty(t *testing.T) {
	s := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	got, err := s.EmbedBatch(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmbed_Single(t *testing.T) {
	srv := newTestServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 3})

	got, err := s.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 5, 0.5}, got)
}

func TestEmbedBatch_ServerError(t *testing.T) {
	srv := newTestServer(t, nil)
	s := NewEmbeddingService(Config{BaseURL: srv.URL, Model: "missing"})

	_, err := s.EmbedBatch(context.Background(), []string{"x"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		models  []string
		model   string
		wantErr bool
	}{
		{name: "untagged matches latest", models: []string{"all-minilm:latest"}, model: "all-minilm"},
		{name: "exact tag", models: []string{"all-minilm:l6-v2"}, model: "all-minilm:l6-v2"},
		{name: "missing model", models: []string{"nomic-embed-text:latest"}, model: "all-minilm", wantErr: true},
		{name: "no models", models: nil, model: "all-minilm", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.models)
			s := NewEmbeddingService(Config{BaseURL: srv.URL, Model: tt.model})

			err := s.Ping(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "ollama pull")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewEmbeddingService(Config{BaseURL: url}).Ping(context.Background())

	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	assert.NoError(t, NewEmbeddingService(Config{}).Close())
}
