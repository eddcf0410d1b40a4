package memory

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

var documentFields = fields[*entity.Document]{
	id:    func(d *entity.Document) uuid.UUID { return d.Id },
	owner: func(d *entity.Document) (uuid.UUID, bool) { return d.OwnerId, true },
	orderKey: func(d *entity.Document, field string) (int64, bool) {
		if field == "created_at" {
			return d.CreatedAt.UnixNano(), true
		}
		return 0, false
	},
}

type documentRepository struct {
	uow *UnitOfWork
}

func (r *documentRepository) Create(ctx context.Context, document *entity.Document) error {
	if document.Id == uuid.Nil {
		document.Id = uuid.New()
	}
	if document.CreatedAt.IsZero() {
		document.CreatedAt = r.uow.store.now()
	}
	row := cloneDocument(document)
	r.uow.write(func(s *Store) {
		s.documents = append(s.documents, row)
	})
	return nil
}

func (r *documentRepository) Update(ctx context.Context, document *entity.Document) error {
	now := r.uow.store.now()
	document.UpdatedAt = &now
	row := cloneDocument(document)
	r.uow.write(func(s *Store) {
		for i, d := range s.documents {
			if d.Id == row.Id {
				s.documents[i] = row
				return
			}
		}
		s.documents = append(s.documents, row)
	})
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.uow.write(func(s *Store) {
		kept := s.documents[:0]
		for _, d := range s.documents {
			if d.Id != id {
				kept = append(kept, d)
			}
		}
		s.documents = kept
		s.deleteChunks(id)
	})
	return nil
}

func (r *documentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *documentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	s := r.uow.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := selectItems(s.documents, documentFields, specs...)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Document, len(rows))
	for i, d := range rows {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

func (r *documentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}
