package memory

import (
	"sync"
	"time"

	"edushelf-be/internal/entity"

	"github.com/google/uuid"
)

// Store holds every table in process memory. It is the backing for
// STORE_DRIVER=memory and for tests. All access goes through a UnitOfWork.
type Store struct {
	mu        sync.RWMutex
	documents []*entity.Document
	chunks    []*entity.Chunk
	sessions  []*entity.ChatSession
	messages  []*entity.ChatMessage
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// apply runs a mutation under the write lock.
func (s *Store) apply(op func(s *Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	op(s)
}

func (s *Store) documentTitle(id uuid.UUID) string {
	for _, d := range s.documents {
		if d.Id == id {
			return d.Title
		}
	}
	return ""
}

func cloneDocument(d *entity.Document) *entity.Document {
	c := *d
	return &c
}

func cloneChunk(ch *entity.Chunk) *entity.Chunk {
	c := *ch
	c.Embedding = append([]float32(nil), ch.Embedding...)
	if ch.Metadata != nil {
		c.Metadata = make(map[string]interface{}, len(ch.Metadata))
		for k, v := range ch.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func cloneSession(s *entity.ChatSession) *entity.ChatSession {
	c := *s
	return &c
}

func cloneMessage(m *entity.ChatMessage) *entity.ChatMessage {
	c := *m
	return &c
}
