package memory

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

var messageFields = fields[*entity.ChatMessage]{
	id:      func(m *entity.ChatMessage) uuid.UUID { return m.Id },
	session: func(m *entity.ChatMessage) (uuid.UUID, bool) { return m.ChatSessionId, true },
	orderKey: func(m *entity.ChatMessage, field string) (int64, bool) {
		if field == "created_at" {
			return m.CreatedAt.UnixNano(), true
		}
		return 0, false
	},
}

type chatMessageRepository struct {
	uow *UnitOfWork
}

func (s *Store) deleteMessages(sessionId uuid.UUID) {
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	s.messages = kept
}

func (r *chatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = r.uow.store.now()
	}
	row := cloneMessage(message)
	r.uow.write(func(s *Store) {
		s.messages = append(s.messages, row)
	})
	return nil
}

func (r *chatMessageRepository) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.uow.write(func(s *Store) {
		s.deleteMessages(sessionId)
	})
	return nil
}

func (r *chatMessageRepository) FindLatest(ctx context.Context, sessionId uuid.UUID) (*entity.ChatMessage, error) {
	rows, err := r.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: 1},
	)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *chatMessageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := selectItems(s.messages, messageFields, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ChatMessage, len(rows))
	for i, row := range rows {
		out[i] = cloneMessage(row)
	}
	return out, nil
}

func (r *chatMessageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}
