package memory

import (
	"context"
	"math"
	"sort"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/contract"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

var chunkFields = fields[*entity.Chunk]{
	id:       func(c *entity.Chunk) uuid.UUID { return c.Id },
	document: func(c *entity.Chunk) (uuid.UUID, bool) { return c.DocumentId, true },
	orderKey: func(c *entity.Chunk, field string) (int64, bool) {
		switch field {
		case "chunk_index":
			return int64(c.ChunkIndex), true
		case "page_number":
			return int64(c.PageNumber), true
		case "created_at":
			return c.CreatedAt.UnixNano(), true
		}
		return 0, false
	},
}

type chunkRepository struct {
	uow *UnitOfWork
}

func (s *Store) deleteChunks(documentId uuid.UUID) {
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentId != documentId {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
}

func (r *chunkRepository) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	now := r.uow.store.now()
	rows := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		rows[i] = cloneChunk(c)
	}
	r.uow.write(func(s *Store) {
		s.chunks = append(s.chunks, rows...)
	})
	return nil
}

func (r *chunkRepository) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.uow.write(func(s *Store) {
		s.deleteChunks(documentId)
	})
	return nil
}

func (r *chunkRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := selectItems(s.chunks, chunkFields, specs...)
	if err != nil {
		return nil, err
	}
	return s.withTitles(rows), nil
}

func (r *chunkRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *chunkRepository) FindByDocumentTitle(ctx context.Context, ownerId uuid.UUID, name string) ([]*entity.Chunk, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []*entity.Chunk
	for _, d := range s.documents {
		if d.OwnerId != ownerId || !entity.MatchesTitle(d.Title, name) {
			continue
		}
		var docChunks []*entity.Chunk
		for _, c := range s.chunks {
			if c.DocumentId == d.Id {
				docChunks = append(docChunks, c)
			}
		}
		sort.SliceStable(docChunks, func(a, b int) bool {
			return docChunks[a].ChunkIndex < docChunks[b].ChunkIndex
		})
		rows = append(rows, docChunks...)
	}
	return s.withTitles(rows), nil
}

func (r *chunkRepository) SearchNearest(ctx context.Context, embedding []float32, limit int, ownerId uuid.UUID) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		return []*contract.ScoredChunk{}, nil
	}

	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make(map[uuid.UUID]string)
	for _, d := range s.documents {
		if d.OwnerId == ownerId {
			owned[d.Id] = d.Title
		}
	}

	var scored []*contract.ScoredChunk
	for _, c := range s.chunks {
		title, ok := owned[c.DocumentId]
		if !ok {
			continue
		}
		row := cloneChunk(c)
		row.DocumentTitle = title
		scored = append(scored, &contract.ScoredChunk{Chunk: row, Distance: cosineDistance(embedding, c.Embedding)})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Distance < scored[b].Distance
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *Store) withTitles(rows []*entity.Chunk) []*entity.Chunk {
	out := make([]*entity.Chunk, len(rows))
	for i, c := range rows {
		out[i] = cloneChunk(c)
		out[i].DocumentTitle = s.documentTitle(c.DocumentId)
	}
	return out
}

// cosineDistance matches pgvector's <=> operator. Zero vectors are at distance 1.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
