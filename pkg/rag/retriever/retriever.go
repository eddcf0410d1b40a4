package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/embedding"
	"edushelf-be/pkg/rag/intent"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const module = "RETRIEVER"

// DynamicK scales the number of nearest chunks with the length of the question.
func DynamicK(userInput string) int {
	words := len(strings.Fields(userInput))
	switch {
	case words < 10:
		return 5
	case words <= 30:
		return 10
	default:
		return 20
	}
}

// EmbeddingCache keeps recent query vectors so a repeated question skips the provider.
type EmbeddingCache struct {
	c *cache.Cache
}

func NewEmbeddingCache(ttl time.Duration) *EmbeddingCache {
	return &EmbeddingCache{c: cache.New(ttl, 2*ttl)}
}

func (e *EmbeddingCache) Get(text string) ([]float32, bool) {
	v, ok := e.c.Get(text)
	if !ok {
		return nil, false
	}
	return v.([]float32), true
}

func (e *EmbeddingCache) Set(text string, values []float32) {
	e.c.Set(text, values, cache.DefaultExpiration)
}

// Retriever picks the chunks that ground an answer. A request naming one of the
// owner's documents returns that document whole; everything else falls back to
// a nearest-neighbour search over the owner's chunks.
type Retriever struct {
	embeddingProvider embedding.EmbeddingProvider
	dimension         int
	queryCache        *EmbeddingCache
	logger            logger.ILogger
}

func New(embeddingProvider embedding.EmbeddingProvider, dimension int, log logger.ILogger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		dimension:         dimension,
		queryCache:        NewEmbeddingCache(10 * time.Minute),
		logger:            log,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, uow unitofwork.UnitOfWork, userInput string, in intent.Intent, ownerId uuid.UUID) ([]*entity.Chunk, error) {
	if name := documentName(in); name != "" {
		chunks, err := uow.ChunkRepository().FindByDocumentTitle(ctx, ownerId, name)
		if err != nil {
			return nil, fmt.Errorf("find chunks by title: %w", err)
		}
		if len(chunks) > 0 {
			r.logger.Info(module, "Using whole document for summary", map[string]interface{}{
				"document_name": name,
				"chunks":        len(chunks),
			})
			return chunks, nil
		}
		r.logger.Info(module, "Named document not found, searching by similarity", map[string]interface{}{
			"document_name": name,
		})
	}

	vector, err := r.embedQuery(ctx, userInput)
	if err != nil {
		return nil, err
	}

	k := DynamicK(userInput)
	scored, err := uow.ChunkRepository().SearchNearest(ctx, vector, k, ownerId)
	if err != nil {
		return nil, fmt.Errorf("search nearest chunks: %w", err)
	}

	chunks := make([]*entity.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = s.Chunk
	}
	r.logger.Debug(module, "Similarity search done", map[string]interface{}{"k": k, "found": len(chunks)})
	return chunks, nil
}

func documentName(in intent.Intent) string {
	if in.DocumentName == nil {
		return ""
	}
	return strings.TrimSpace(*in.DocumentName)
}

func (r *Retriever) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := r.queryCache.Get(text); ok {
		return cached, nil
	}

	resp, err := r.embeddingProvider.Generate(ctx, text, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := embedding.CheckDimension(resp.Embedding.Values, r.dimension); err != nil {
		return nil, err
	}

	r.queryCache.Set(text, resp.Embedding.Values)
	return resp.Embedding.Values, nil
}
