package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorSchemaSQL(t *testing.T) {
	stmts := VectorSchemaSQL(768)

	assert.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "vector(768)")
	assert.Contains(t, stmts[1], "vector_cosine_ops")
}

func TestEnsureVectorSchemaRejectsBadDimension(t *testing.T) {
	assert.Error(t, EnsureVectorSchema(nil, 0))
}
