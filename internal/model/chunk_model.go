package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Chunk.Embedding is created as an unbounded vector and narrowed to the
// configured dimension by the migrate command.
type Chunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID         `gorm:"type:uuid;not null;index"`
	Content    string            `gorm:"type:text;not null"`
	PageNumber int               `gorm:"not null;default:1"`
	ChunkIndex int               `gorm:"not null;default:0"`
	Embedding  pgvector.Vector   `gorm:"type:vector;not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"autoCreateTime"`

	DocumentTitle string `gorm:"->;-:migration"`
}

func (Chunk) TableName() string {
	return "chunks"
}
