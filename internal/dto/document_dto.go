package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	FileType   string     `json:"file_type"`
	ChunkCount int64      `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type ReindexDocumentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Queued     bool      `json:"queued"`
}

// PublishIndexDocumentMessage is the payload of an index job.
type PublishIndexDocumentMessage struct {
	DocumentId  uuid.UUID `json:"document_id"`
	StoragePath string    `json:"storage_path"`
	BatchSize   int       `json:"batch_size"`
}
