package unitofwork

import (
	"context"

	"edushelf-be/internal/repository/contract"
)

// UnitOfWork is a short-lived handle. Repositories obtained after Begin share
// its transaction; Rollback after Commit is a harmless no-op error.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
