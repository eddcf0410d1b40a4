package database

import (
	"fmt"

	"gorm.io/gorm"
)

// VectorSchemaSQL returns the statements that pin chunks.embedding to a fixed
// dimension and index it for cosine distance. Rows of another length make the
// ALTER fail, which is the point: mixed dimensions cannot be compared.
func VectorSchemaSQL(dimension int) []string {
	return []string{
		fmt.Sprintf(`ALTER TABLE chunks ALTER COLUMN embedding TYPE vector(%d);`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding_hnsw ON chunks USING hnsw (embedding vector_cosine_ops);`,
	}
}

func EnsureVectorSchema(db *gorm.DB, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dimension)
	}
	for _, stmt := range VectorSchemaSQL(dimension) {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
