package contract

import (
	"context"

	"edushelf-be/internal/entity"
	"edushelf-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
	// FindLatest returns the newest message of a session, or nil when it has none.
	FindLatest(ctx context.Context, sessionId uuid.UUID) (*entity.ChatMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
