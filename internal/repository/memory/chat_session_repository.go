package memory

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

var sessionFields = fields[*entity.ChatSession]{
	id:    func(s *entity.ChatSession) uuid.UUID { return s.Id },
	owner: func(s *entity.ChatSession) (uuid.UUID, bool) { return s.OwnerId, true },
	orderKey: func(s *entity.ChatSession, field string) (int64, bool) {
		switch field {
		case "created_at":
			return s.CreatedAt.UnixNano(), true
		case "updated_at":
			if s.UpdatedAt == nil {
				return s.CreatedAt.UnixNano(), true
			}
			return s.UpdatedAt.UnixNano(), true
		}
		return 0, false
	},
}

type chatSessionRepository struct {
	uow *UnitOfWork
}

func (r *chatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = r.uow.store.now()
	}
	row := cloneSession(session)
	r.uow.write(func(s *Store) {
		s.sessions = append(s.sessions, row)
	})
	return nil
}

func (r *chatSessionRepository) Update(ctx context.Context, session *entity.ChatSession) error {
	now := r.uow.store.now()
	session.UpdatedAt = &now
	row := cloneSession(session)
	r.uow.write(func(s *Store) {
		for i, existing := range s.sessions {
			if existing.Id == row.Id {
				s.sessions[i] = row
				return
			}
		}
		s.sessions = append(s.sessions, row)
	})
	return nil
}

func (r *chatSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.uow.write(func(s *Store) {
		kept := s.sessions[:0]
		for _, existing := range s.sessions {
			if existing.Id != id {
				kept = append(kept, existing)
			}
		}
		s.sessions = kept
		s.deleteMessages(id)
	})
	return nil
}

func (r *chatSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *chatSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := selectItems(s.sessions, sessionFields, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ChatSession, len(rows))
	for i, row := range rows {
		out[i] = cloneSession(row)
	}
	return out, nil
}

func (r *chatSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}
