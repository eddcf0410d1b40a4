package implementation

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/mapper"
	"edushelf-be/internal/model"
	"edushelf-be/internal/repository/contract"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

const titleSelect = "chunks.*, documents.title AS document_title"

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Chunk{}).Error
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.Chunk
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Chunk{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChunkRepositoryImpl) FindByDocumentTitle(ctx context.Context, ownerId uuid.UUID, name string) ([]*entity.Chunk, error) {
	keys := entity.TitleKeys(name)
	if len(keys) == 0 {
		return []*entity.Chunk{}, nil
	}

	var models []*model.Chunk
	err := r.db.WithContext(ctx).
		Table("chunks").
		Select(titleSelect).
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("documents.owner_id = ?", ownerId).
		Where("(LOWER(documents.title) IN ? OR REGEXP_REPLACE(LOWER(documents.title), ?, '') IN ?)", keys, entity.ExtensionSuffixPattern, keys).
		Order("documents.created_at ASC, chunks.document_id ASC, chunks.chunk_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) SearchNearest(ctx context.Context, embedding []float32, limit int, ownerId uuid.UUID) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		return []*contract.ScoredChunk{}, nil
	}

	type result struct {
		model.Chunk
		Distance float64
	}
	var results []result

	query := pgvector.NewVector(embedding)
	err := r.db.WithContext(ctx).
		Table("chunks").
		Select(titleSelect+", chunks.embedding <=> ? AS distance", query).
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("documents.owner_id = ?", ownerId).
		Order("distance ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:    r.mapper.ToEntity(&results[i].Chunk),
			Distance: results[i].Distance,
		}
	}
	return scored, nil
}
