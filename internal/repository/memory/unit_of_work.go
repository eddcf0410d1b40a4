package memory

import (
	"context"
	"fmt"
	"sync"

	"edushelf-be/internal/repository/contract"
	"edushelf-be/internal/repository/unitofwork"
)

// UnitOfWork buffers writes made after Begin and applies them atomically on
// Commit. Reads always see committed state only.
type UnitOfWork struct {
	store *Store

	mu      sync.Mutex
	pending []func(s *Store)
	inTx    bool
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	u.inTx = true
	u.pending = nil
	return nil
}

func (u *UnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	ops := u.pending
	u.pending = nil
	u.inTx = false

	u.store.apply(func(s *Store) {
		for _, op := range ops {
			op(s)
		}
	})
	return nil
}

func (u *UnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	u.pending = nil
	u.inTx = false
	return nil
}

// write applies op now, or queues it when a transaction is open.
func (u *UnitOfWork) write(op func(s *Store)) {
	u.mu.Lock()
	if u.inTx {
		u.pending = append(u.pending, op)
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()
	u.store.apply(op)
}

func (u *UnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &documentRepository{uow: u}
}

func (u *UnitOfWork) ChunkRepository() contract.ChunkRepository {
	return &chunkRepository{uow: u}
}

func (u *UnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &chatSessionRepository{uow: u}
}

func (u *UnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &chatMessageRepository{uow: u}
}

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}
