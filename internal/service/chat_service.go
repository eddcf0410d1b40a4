package service

import (
	"context"
	"strings"
	"time"

	"edushelf-be/internal/dto"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/specification"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/rag/chat"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, ownerId uuid.UUID, request *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, ownerId uuid.UUID) ([]*dto.SessionResponse, error)
	GetHistory(ctx context.Context, ownerId, sessionId uuid.UUID) ([]*dto.MessageResponse, error)
	PostTurn(ctx context.Context, ownerId, sessionId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	DeleteSession(ctx context.Context, ownerId, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory   unitofwork.RepositoryFactory
	orchestrator *chat.Orchestrator
	history      chat.HistoryStore
	logger       logger.ILogger
}

// NewChatService builds the chat surface. history may be nil.
func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	orchestrator *chat.Orchestrator,
	history chat.HistoryStore,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:   uowFactory,
		orchestrator: orchestrator,
		history:      history,
		logger:       log,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, ownerId uuid.UUID, request *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = entity.DefaultSessionTitle
	}

	now := time.Now()
	session := &entity.ChatSession{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: &now,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}
	return toSessionResponse(session), nil
}

// ListSessions returns the owner's sessions, most recently active first.
func (cs *chatService) ListSessions(ctx context.Context, ownerId uuid.UUID) ([]*dto.SessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		res = append(res, toSessionResponse(s))
	}
	return res, nil
}

func (cs *chatService) GetHistory(ctx context.Context, ownerId, sessionId uuid.UUID) ([]*dto.MessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if _, err := chat.LoadSession(ctx, uow, sessionId, ownerId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx, specification.SessionTranscript(sessionId)...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		res = append(res, toMessageResponse(m))
	}
	return res, nil
}

func (cs *chatService) PostTurn(ctx context.Context, ownerId, sessionId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	result, err := cs.orchestrator.PostTurn(ctx, chat.TurnInput{
		SessionId:        sessionId,
		OwnerId:          ownerId,
		Text:             request.Text,
		ImageDescription: request.ImageDescription,
	})
	if err != nil {
		return nil, err
	}

	res := &dto.SendMessageResponse{
		ChatSessionId:    sessionId,
		ChatSessionTitle: result.SessionTitle,
		Reply:            result.Response,
		Fallback:         result.Fallback,
		Intent:           string(result.Intent.Type),
		DocumentName:     result.Intent.DocumentName,
		ChunkCount:       result.ChunkCount,
	}
	if result.Message != nil {
		res.Message = toMessageResponse(result.Message)
	}
	return res, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, ownerId, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if _, err := chat.LoadSession(ctx, uow, sessionId, ownerId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if cs.history != nil {
		if err := cs.history.DeleteHistory(ctx, sessionId); err != nil {
			cs.logger.Warn("CHAT", "History cache invalidation failed", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

func toSessionResponse(s *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:        s.Id,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMessageResponse(m *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:               m.Id,
		UserText:         m.UserText,
		ResponseText:     m.ResponseText,
		ImageDescription: m.ImageDescription,
		CreatedAt:        m.CreatedAt,
	}
}
