package contract

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk pairs a chunk with its cosine distance to the query (0 = identical).
type ScoredChunk struct {
	Chunk    *entity.Chunk
	Distance float64
}

type ChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.Chunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindByDocumentTitle returns every chunk of the owner's documents whose title
	// matches name (see entity.MatchesTitle), ordered by document then chunk index.
	FindByDocumentTitle(ctx context.Context, ownerId uuid.UUID, name string) ([]*entity.Chunk, error)
	// SearchNearest returns at most limit of the owner's chunks, closest first.
	SearchNearest(ctx context.Context, embedding []float32, limit int, ownerId uuid.UUID) ([]*ScoredChunk, error)
}
