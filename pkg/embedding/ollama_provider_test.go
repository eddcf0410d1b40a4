package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edushelf-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{Embedding: []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	resp, err := p.Generate(context.Background(), "hello", TaskRetrievalDocument)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, resp.Embedding.Values[0], 1e-6)
	assert.InDelta(t, 0.8, resp.Embedding.Values[1], 1e-6)
}

func TestOllamaProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "x", "")
	assert.ErrorContains(t, err, "status 404")
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{1, 2, 2})
	var sum float64
	for _, v := range out {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

type fixedProvider struct{ values []float32 }

func (p fixedProvider) Generate(ctx context.Context, text, taskType string) (*EmbeddingResponse, error) {
	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: p.values}}, nil
}

func TestValidateDimension(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, ValidateDimension(ctx, fixedProvider{values: make([]float32, 4)}, 4))

	err := ValidateDimension(ctx, fixedProvider{values: make([]float32, 3)}, 4)
	assert.ErrorIs(t, err, apperror.ErrDimensionMismatch)
	assert.Equal(t, apperror.KindProvider, apperror.KindOf(err))
}

func TestProvidersCarryClientTimeout(t *testing.T) {
	p := NewOllamaProvider("", "").(*OllamaProvider)
	assert.Equal(t, ProviderTimeout, p.client.Timeout)

	g := NewGeminiProvider("key").(*GeminiProvider)
	assert.Equal(t, ProviderTimeout, g.client.Timeout)
}

func TestOllamaProviderHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOllamaProvider(srv.URL, "").Generate(ctx, "hello", TaskRetrievalQuery)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
