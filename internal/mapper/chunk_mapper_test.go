package mapper

import (
	"testing"
	"time"

	"edushelf-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestChunkMapperKeepsVectorAndMetadata(t *testing.T) {
	m := NewChunkMapper()
	in := &entity.Chunk{
		Id:         uuid.New(),
		DocumentId: uuid.New(),
		Content:    "Kinetic energy is one half m v squared.",
		PageNumber: 3,
		ChunkIndex: 7,
		Embedding:  []float32{0.1, 0.2, 0.3},
		Metadata:   map[string]interface{}{"file_type": ".pdf"},
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	out := m.ToEntity(m.ToModel(in))

	assert.Equal(t, in, out)
	assert.Nil(t, m.ToEntity(nil))
}

func TestChatMapperSessionUpdatedAt(t *testing.T) {
	m := NewChatMapper()
	s := &entity.ChatSession{Id: uuid.New(), OwnerId: uuid.New(), Title: "New Chat"}

	model := m.ChatSessionToModel(s)
	assert.True(t, model.UpdatedAt.IsZero())
	assert.Nil(t, m.ChatSessionToEntity(model).UpdatedAt)
}
