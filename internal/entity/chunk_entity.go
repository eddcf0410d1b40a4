package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Content    string
	PageNumber int
	ChunkIndex int
	Embedding  []float32
	Metadata   map[string]interface{}
	CreatedAt  time.Time

	// Populated on reads that join the owning document.
	DocumentTitle string
}
