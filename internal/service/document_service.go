package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/dto"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/specification"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/events"
	"edushelf-be/pkg/extract"
	"edushelf-be/pkg/keylock"
	"edushelf-be/pkg/storage"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, ownerId uuid.UUID, fileName, contentType string, r io.Reader) (*dto.DocumentResponse, error)
	List(ctx context.Context, ownerId uuid.UUID) ([]*dto.DocumentResponse, error)
	Reindex(ctx context.Context, ownerId, documentId uuid.UUID) (*dto.ReindexDocumentResponse, error)
	Delete(ctx context.Context, ownerId, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	storage          storage.Storage
	publisherService IPublisherService
	eventPublisher   events.Publisher
	indexBatchSize   int
	locks            *keylock.KeyLock
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	store storage.Storage,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	indexBatchSize int,
	locks *keylock.KeyLock,
	log logger.ILogger,
) IDocumentService {
	if locks == nil {
		locks = keylock.New()
	}
	return &documentService{
		uowFactory:       uowFactory,
		storage:          store,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		indexBatchSize:   indexBatchSize,
		locks:            locks,
		logger:           log,
	}
}

// Upload stores the file and creates the document row, then queues indexing
// and returns without waiting for it.
func (ds *documentService) Upload(ctx context.Context, ownerId uuid.UUID, fileName, contentType string, r io.Reader) (*dto.DocumentResponse, error) {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	ext := extract.NormalizeExt(filepath.Ext(fileName))
	if !extract.Supported(ext) {
		return nil, fmt.Errorf("%s: %w", fileName, apperror.ErrUnsupportedFileType)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.E(apperror.KindValidation, "unreadable upload", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperror.ErrEmptyContent
	}

	path, err := ds.storage.Upload(ctx, bytes.NewReader(data), fileName, contentType)
	if err != nil {
		return nil, apperror.Internal("store upload", err)
	}

	document := &entity.Document{
		Id:          uuid.New(),
		OwnerId:     ownerId,
		Title:       fileName,
		StoragePath: path,
		FileType:    ext,
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		ds.removeFile(ctx, path)
		return nil, fmt.Errorf("create document: %w", err)
	}

	ds.enqueue(ctx, document)
	ds.publish(ctx, events.DocumentUploaded(document.Id, ownerId, document.Title))

	ds.logger.Info("DOCUMENT", "Document uploaded", map[string]interface{}{
		"document_id": document.Id,
		"owner_id":    ownerId,
		"bytes":       len(data),
	})
	return toDocumentResponse(document, 0), nil
}

func (ds *documentService) List(ctx context.Context, ownerId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		count, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: d.Id})
		if err != nil {
			return nil, err
		}
		res = append(res, toDocumentResponse(d, count))
	}
	return res, nil
}

func (ds *documentService) Reindex(ctx context.Context, ownerId, documentId uuid.UUID) (*dto.ReindexDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	document, err := ds.ownedDocument(ctx, uow, ownerId, documentId)
	if err != nil {
		return nil, err
	}

	if err := ds.publisherService.PublishIndexDocument(ctx, ds.indexMessage(document)); err != nil {
		return nil, apperror.Internal("queue reindex", err)
	}
	return &dto.ReindexDocumentResponse{DocumentId: document.Id, Queued: true}, nil
}

// Delete waits for a running index of the same document, so no chunks are
// written after the document row is gone.
func (ds *documentService) Delete(ctx context.Context, ownerId, documentId uuid.UUID) error {
	unlock := ds.locks.Lock(documentId.String())
	defer unlock()

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	document, err := ds.ownedDocument(ctx, uow, ownerId, documentId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	ds.removeFile(ctx, document.StoragePath)
	ds.publish(ctx, events.DocumentDeleted(document.Id, ownerId))
	return nil
}

func (ds *documentService) ownedDocument(ctx context.Context, uow unitofwork.UnitOfWork, ownerId, documentId uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperror.ErrDocumentNotFound
	}
	if document.OwnerId != ownerId {
		return nil, apperror.ErrDocumentForbidden
	}
	return document, nil
}

func (ds *documentService) indexMessage(document *entity.Document) dto.PublishIndexDocumentMessage {
	return dto.PublishIndexDocumentMessage{
		DocumentId:  document.Id,
		StoragePath: document.StoragePath,
		BatchSize:   ds.indexBatchSize,
	}
}

// enqueue failures are logged only; the upload already succeeded and a
// reindex recovers the document.
func (ds *documentService) enqueue(ctx context.Context, document *entity.Document) {
	if err := ds.publisherService.PublishIndexDocument(ctx, ds.indexMessage(document)); err != nil {
		ds.logger.Error("DOCUMENT", "Failed to queue indexing", map[string]interface{}{
			"document_id": document.Id,
			"error":       err.Error(),
		})
	}
}

func (ds *documentService) removeFile(ctx context.Context, path string) {
	if err := ds.storage.Delete(ctx, path); err != nil {
		ds.logger.Warn("DOCUMENT", "Failed to remove stored file", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}

func (ds *documentService) publish(ctx context.Context, event events.Event) {
	if ds.eventPublisher == nil {
		return
	}
	if err := ds.eventPublisher.Publish(ctx, event); err != nil {
		ds.logger.Warn("DOCUMENT", "Event publish failed", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func toDocumentResponse(d *entity.Document, chunkCount int64) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		Id:         d.Id,
		Title:      d.Title,
		FileType:   d.FileType,
		ChunkCount: chunkCount,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
