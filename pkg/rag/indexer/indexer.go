package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/specification"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/chunker"
	"edushelf-be/pkg/embedding"
	"edushelf-be/pkg/extract"
	"edushelf-be/pkg/keylock"
	"edushelf-be/pkg/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const module = "INDEXER"

// DefaultEmbedTimeout bounds one embedding call unless WithEmbedTimeout overrides it.
const DefaultEmbedTimeout = 60 * time.Second

var tracer = otel.Tracer("edushelf-be/indexer")

// Reasons reported on skipped runs.
const (
	ReasonDocumentDeleted = "document deleted"
	ReasonUnsupportedType = "unsupported file type"
	ReasonEmptyContent    = "empty content"
)

// Result describes one indexing run. Skipped runs leave existing chunks alone.
type Result struct {
	DocumentId uuid.UUID
	Chunks     int
	Batches    int
	Skipped    bool
	Reason     string
}

type Indexer struct {
	uowFactory        unitofwork.RepositoryFactory
	storage           storage.Storage
	extractor         extract.Extractor
	chunker           *chunker.SentenceChunker
	embeddingProvider embedding.EmbeddingProvider
	dimension         int
	locks             *keylock.KeyLock
	embedTimeout      time.Duration
	logger            logger.ILogger
}

func New(
	uowFactory unitofwork.RepositoryFactory,
	store storage.Storage,
	extractor extract.Extractor,
	chunk *chunker.SentenceChunker,
	embeddingProvider embedding.EmbeddingProvider,
	dimension int,
	locks *keylock.KeyLock,
	log logger.ILogger,
) *Indexer {
	if locks == nil {
		locks = keylock.New()
	}
	return &Indexer{
		uowFactory:        uowFactory,
		storage:           store,
		extractor:         extractor,
		chunker:           chunk,
		embeddingProvider: embeddingProvider,
		dimension:         dimension,
		locks:             locks,
		embedTimeout:      DefaultEmbedTimeout,
		logger:            log,
	}
}

// WithEmbedTimeout sets the deadline of each embedding call. A call that
// exceeds it fails the run like any other provider error.
func (ix *Indexer) WithEmbedTimeout(d time.Duration) *Indexer {
	if d > 0 {
		ix.embedTimeout = d
	}
	return ix
}

type piece struct {
	page    int
	index   int
	content string
}

// IndexDocument replaces the chunk set of a document with freshly extracted,
// chunked and embedded text. batchSize <= 0 embeds everything before writing;
// otherwise chunks are embedded and committed batchSize at a time.
func (ix *Indexer) IndexDocument(ctx context.Context, documentId uuid.UUID, storagePath string, batchSize int) (res *Result, err error) {
	ctx, span := tracer.Start(ctx, "Indexer.IndexDocument")
	span.SetAttributes(attribute.String("document.id", documentId.String()))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	unlock := ix.locks.Lock(documentId.String())
	defer unlock()

	uow := ix.uowFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		ix.logger.Warn(module, "Document gone before indexing", map[string]interface{}{"document_id": documentId})
		return &Result{DocumentId: documentId, Skipped: true, Reason: ReasonDocumentDeleted}, nil
	}
	if storagePath == "" {
		storagePath = doc.StoragePath
	}

	ext := doc.FileType
	if ext == "" {
		ext = filepath.Ext(storagePath)
	}
	ext = extract.NormalizeExt(ext)
	if !extract.Supported(ext) {
		ix.logger.Warn(module, "Unsupported file type, skipping", map[string]interface{}{"document_id": documentId, "ext": ext})
		return &Result{DocumentId: documentId, Skipped: true, Reason: ReasonUnsupportedType}, nil
	}

	pieces, err := ix.split(ctx, storagePath, ext)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		ix.logger.Warn(module, "No text extracted, skipping", map[string]interface{}{"document_id": documentId})
		return &Result{DocumentId: documentId, Skipped: true, Reason: ReasonEmptyContent}, nil
	}

	ix.logger.Info(module, "Indexing document", map[string]interface{}{
		"document_id": documentId,
		"chunks":      len(pieces),
		"batch_size":  batchSize,
	})

	res = &Result{DocumentId: documentId, Chunks: len(pieces)}
	if batchSize <= 0 || batchSize >= len(pieces) {
		err = ix.indexAll(ctx, doc, ext, pieces)
		res.Batches = 1
	} else {
		res.Batches, err = ix.indexBatched(ctx, doc, ext, pieces, batchSize)
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("chunks", res.Chunks), attribute.Int("batches", res.Batches))
	ix.logger.Info(module, "Document indexed", map[string]interface{}{
		"document_id": documentId,
		"chunks":      res.Chunks,
		"batches":     res.Batches,
	})
	return res, nil
}

func (ix *Indexer) split(ctx context.Context, storagePath, ext string) ([]piece, error) {
	rc, err := ix.storage.Download(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", storagePath, err)
	}
	if rc == nil {
		return nil, apperror.E(apperror.KindNotFound, "stored file missing: "+storagePath, nil)
	}
	defer rc.Close()

	pages, err := ix.extractor.ExtractPages(rc, ext)
	if err != nil {
		return nil, err
	}

	var pieces []piece
	for _, p := range pages {
		for _, c := range ix.chunker.Chunk(p.Text) {
			pieces = append(pieces, piece{page: p.Number, index: len(pieces), content: c})
		}
	}
	return pieces, nil
}

// indexAll embeds every chunk up front so a provider failure never touches
// the stored chunk set.
func (ix *Indexer) indexAll(ctx context.Context, doc *entity.Document, ext string, pieces []piece) error {
	chunks, err := ix.embed(ctx, doc, ext, pieces, 0)
	if err != nil {
		return err
	}
	return ix.write(ctx, ix.uowFactory.NewUnitOfWork(ctx), doc.Id, chunks, true)
}

// indexBatched drops the old chunks with the first batch. Each batch commits
// through its own unit of work. A later failure removes everything this run
// wrote, leaving the document without chunks rather than with a partial set.
func (ix *Indexer) indexBatched(ctx context.Context, doc *entity.Document, ext string, pieces []piece, batchSize int) (int, error) {
	batches := 0
	for start := 0; start < len(pieces); start += batchSize {
		end := min(start+batchSize, len(pieces))
		first := start == 0

		chunks, err := ix.embed(ctx, doc, ext, pieces[start:end], batches)
		if err == nil {
			err = ix.write(ctx, ix.uowFactory.NewUnitOfWork(ctx), doc.Id, chunks, first)
		}
		if err != nil {
			if !first {
				ix.compensate(ctx, doc.Id, batches, err)
			}
			return batches, err
		}
		batches++
	}
	return batches, nil
}

func (ix *Indexer) compensate(ctx context.Context, documentId uuid.UUID, batch int, cause error) {
	ix.logger.Error(module, "Batch failed, removing partial chunk set", map[string]interface{}{
		"document_id": documentId,
		"batch":       batch,
		"error":       cause.Error(),
	})
	ctx = context.WithoutCancel(ctx)
	uow := ix.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		ix.logger.Error(module, "Failed to remove partial chunk set", map[string]interface{}{
			"document_id": documentId,
			"error":       err.Error(),
		})
	}
}

func (ix *Indexer) embed(ctx context.Context, doc *entity.Document, ext string, pieces []piece, batch int) ([]*entity.Chunk, error) {
	now := time.Now()
	chunks := make([]*entity.Chunk, 0, len(pieces))
	for _, p := range pieces {
		resp, err := ix.embedOne(ctx, EmbeddingInput(doc.Title, p.content))
		if err != nil {
			return nil, apperror.Provider(fmt.Sprintf("embed chunk %d", p.index), err)
		}
		if err := embedding.CheckDimension(resp.Embedding.Values, ix.dimension); err != nil {
			return nil, apperror.Provider(fmt.Sprintf("embed chunk %d", p.index), err)
		}

		chunks = append(chunks, &entity.Chunk{
			Id:         uuid.New(),
			DocumentId: doc.Id,
			Content:    p.content,
			PageNumber: p.page,
			ChunkIndex: p.index,
			Embedding:  resp.Embedding.Values,
			Metadata: map[string]interface{}{
				"file_type":   ext,
				"page_number": p.page,
				"chunk_index": p.index,
				"batch":       batch,
				"char_count":  len([]rune(p.content)),
			},
			CreatedAt: now,
		})
	}
	return chunks, nil
}

func (ix *Indexer) embedOne(ctx context.Context, text string) (*embedding.EmbeddingResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, ix.embedTimeout)
	defer cancel()
	return ix.embeddingProvider.Generate(ctx, text, embedding.TaskRetrievalDocument)
}

func (ix *Indexer) write(ctx context.Context, uow unitofwork.UnitOfWork, documentId uuid.UUID, chunks []*entity.Chunk, replace bool) error {
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	if replace {
		if err := uow.ChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
			return fmt.Errorf("delete old chunks: %w", err)
		}
	}
	if err := uow.ChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return fmt.Errorf("create chunks: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit chunks: %w", err)
	}
	return nil
}

// EmbeddingInput prefixes a chunk with its document title so the vector
// carries the document identity. The stored chunk content stays bare.
func EmbeddingInput(title, content string) string {
	return "Document: " + title + "\n" + content
}
