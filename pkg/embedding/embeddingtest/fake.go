// Package embeddingtest provides deterministic embedding providers for tests.
package embeddingtest

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"

	"edushelf-be/pkg/embedding"
)

var ErrUnavailable = errors.New("embedding provider unavailable")

// HashProvider embeds text as a normalized bag of hashed lowercase words, so
// texts sharing words land close together.
type HashProvider struct {
	Dimension int
	calls     atomic.Int64
}

func NewHashProvider(dimension int) *HashProvider {
	return &HashProvider{Dimension: dimension}
}

func (p *HashProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.calls.Add(1)
	return respond(Vector(text, p.Dimension)), nil
}

func (p *HashProvider) Calls() int {
	return int(p.calls.Load())
}

// Vector is the embedding HashProvider would return for text.
func Vector(text string, dimension int) []float32 {
	vec := make([]float32, dimension)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:'\"()[]")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[int(h.Sum32())%dimension]++
	}
	return embedding.Normalize(vec)
}

// StaticProvider returns the same vector for every input.
type StaticProvider struct {
	Values []float32
}

func (p *StaticProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return respond(append([]float32(nil), p.Values...)), nil
}

// FailingProvider succeeds for the first SucceedFor calls and then fails.
type FailingProvider struct {
	Inner      embedding.EmbeddingProvider
	SucceedFor int

	mu    sync.Mutex
	calls int
}

func (p *FailingProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.mu.Lock()
	p.calls++
	n := p.calls
	p.mu.Unlock()

	if n > p.SucceedFor {
		return nil, ErrUnavailable
	}
	return p.Inner.Generate(ctx, text, taskType)
}

// HangingProvider never answers; Generate returns only when ctx ends.
type HangingProvider struct {
	calls atomic.Int32
}

func (p *HangingProvider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	p.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *HangingProvider) Calls() int {
	return int(p.calls.Load())
}

func respond(values []float32) *embedding.EmbeddingResponse {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: values},
	}
}
