package mapper

import (
	"edushelf-be/internal/entity"
	"edushelf-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ChunkMapper struct{}

func NewChunkMapper() *ChunkMapper {
	return &ChunkMapper{}
}

func (m *ChunkMapper) ToEntity(c *model.Chunk) *entity.Chunk {
	if c == nil {
		return nil
	}

	return &entity.Chunk{
		Id:            c.Id,
		DocumentId:    c.DocumentId,
		Content:       c.Content,
		PageNumber:    c.PageNumber,
		ChunkIndex:    c.ChunkIndex,
		Embedding:     c.Embedding.Slice(),
		Metadata:      map[string]interface{}(c.Metadata),
		CreatedAt:     c.CreatedAt,
		DocumentTitle: c.DocumentTitle,
	}
}

func (m *ChunkMapper) ToModel(c *entity.Chunk) *model.Chunk {
	if c == nil {
		return nil
	}

	return &model.Chunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Content:    c.Content,
		PageNumber: c.PageNumber,
		ChunkIndex: c.ChunkIndex,
		Embedding:  pgvector.NewVector(c.Embedding),
		Metadata:   datatypes.JSONMap(c.Metadata),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChunkMapper) ToEntities(chunks []*model.Chunk) []*entity.Chunk {
	entities := make([]*entity.Chunk, len(chunks))
	for i, c := range chunks {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *ChunkMapper) ToModels(chunks []*entity.Chunk) []*model.Chunk {
	models := make([]*model.Chunk, len(chunks))
	for i, c := range chunks {
		models[i] = m.ToModel(c)
	}
	return models
}
