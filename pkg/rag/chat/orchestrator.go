package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/constant"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/specification"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/events"
	"edushelf-be/pkg/keylock"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/rag/intent"
	"edushelf-be/pkg/rag/prompt"
	"edushelf-be/pkg/rag/retriever"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	module = "CHAT_ORCHESTRATOR"

	titleRunes = 50
)

var tracer = otel.Tracer("edushelf-be/chat")

// HistoryStore caches a session's replay. internal/cache.HistoryCache implements it.
type HistoryStore interface {
	GetHistory(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionId uuid.UUID, messages []*entity.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionId uuid.UUID) error
}

type TurnInput struct {
	SessionId        uuid.UUID
	OwnerId          uuid.UUID
	Text             string
	ImageDescription *string
}

type TurnResult struct {
	Response string
	// Message is nil when the turn fell back.
	Message      *entity.ChatMessage
	Fallback     bool
	Intent       intent.Intent
	ChunkCount   int
	SessionTitle string
}

type Dependencies struct {
	UowFactory  unitofwork.RepositoryFactory
	Classifier  *intent.Classifier
	Retriever   *retriever.Retriever
	Assembler   *prompt.Assembler
	LLMProvider llm.LLMProvider
	// Optional.
	History   HistoryStore
	Publisher events.Publisher
	Locks     *keylock.KeyLock
	// Timeout bounds each model call of a turn. Zero disables it.
	Timeout time.Duration
	Logger  logger.ILogger
}

type Orchestrator struct {
	Dependencies
	now func() time.Time
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	if deps.Locks == nil {
		deps.Locks = keylock.New()
	}
	return &Orchestrator{Dependencies: deps, now: time.Now}
}

// PostTurn answers one user message. Turns on the same session run one at a
// time. A missing or foreign session is returned as an error; any other failure
// yields the fallback response and nothing is persisted.
func (o *Orchestrator) PostTurn(ctx context.Context, in TurnInput) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "ChatOrchestrator.PostTurn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", in.SessionId.String()))

	if strings.TrimSpace(in.Text) == "" {
		return nil, apperror.ErrEmptyContent
	}

	unlock := o.Locks.Lock(in.SessionId.String())
	defer unlock()

	uow := o.UowFactory.NewUnitOfWork(ctx)

	session, err := LoadSession(ctx, uow, in.SessionId, in.OwnerId)
	if err != nil {
		kind := apperror.KindOf(err)
		if kind == apperror.KindNotFound || kind == apperror.KindUnauthorized {
			return nil, err
		}
		return o.fallback(ctx, in, err), nil
	}

	result, err := o.run(ctx, uow, session, in)
	if err != nil {
		return o.fallback(ctx, in, err), nil
	}

	span.SetAttributes(
		attribute.String("intent", string(result.Intent.Type)),
		attribute.Int("chunks", result.ChunkCount),
	)
	o.publish(ctx, events.ChatTurnCompleted(in.SessionId, string(result.Intent.Type), result.ChunkCount, false))
	return result, nil
}

// LoadSession separates a session that does not exist from one owned by someone else.
func LoadSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionId, ownerId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound
	}
	if session.OwnerId != ownerId {
		return nil, apperror.ErrSessionForbidden
	}
	return session, nil
}

func (o *Orchestrator) run(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, in TurnInput) (*TurnResult, error) {
	history, err := o.loadHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	classifyCtx, cancel := o.withTimeout(ctx)
	turnIntent := o.Classifier.Classify(classifyCtx, in.Text)
	cancel()

	retrieveCtx, cancel := o.withTimeout(ctx)
	chunks, err := o.Retriever.Retrieve(retrieveCtx, uow, in.Text, turnIntent, in.OwnerId)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	messages := o.Assembler.BuildModelInput(history, chunks, in.Text, in.ImageDescription)

	genCtx, cancel := o.withTimeout(ctx)
	response, err := o.LLMProvider.Chat(genCtx, messages)
	cancel()
	if err != nil {
		return nil, apperror.Provider("generate response", err)
	}
	if strings.TrimSpace(response) == "" {
		return nil, apperror.ErrEmptyModelResponse
	}

	message, err := o.persist(ctx, uow, session, in, response, len(history) == 0)
	if err != nil {
		return nil, err
	}

	o.Logger.Info(module, "Chat turn completed", map[string]interface{}{
		"session_id": session.Id,
		"intent":     turnIntent.Type,
		"chunks":     len(chunks),
		"history":    len(history),
	})

	return &TurnResult{
		Response:     response,
		Message:      message,
		Intent:       turnIntent,
		ChunkCount:   len(chunks),
		SessionTitle: session.Title,
	}, nil
}

func (o *Orchestrator) loadHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	if o.History != nil {
		cached, ok, err := o.History.GetHistory(ctx, sessionId)
		if err != nil {
			o.Logger.Warn(module, "History cache read failed", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		} else if ok {
			return cached, nil
		}
	}

	history, err := uow.ChatMessageRepository().FindAll(ctx, specification.SessionTranscript(sessionId)...)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if o.History != nil {
		if err := o.History.SetHistory(ctx, sessionId, history); err != nil {
			o.Logger.Warn(module, "History cache write failed", map[string]interface{}{"session_id": sessionId, "error": err.Error()})
		}
	}
	return history, nil
}

func (o *Orchestrator) persist(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, in TurnInput, response string, firstTurn bool) (*entity.ChatMessage, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	last, err := uow.ChatMessageRepository().FindLatest(ctx, session.Id)
	if err != nil {
		return nil, fmt.Errorf("load latest message: %w", err)
	}

	message := &entity.ChatMessage{
		Id:               uuid.New(),
		ChatSessionId:    session.Id,
		UserText:         in.Text,
		ResponseText:     &response,
		ImageDescription: in.ImageDescription,
		CreatedAt:        NextTimestamp(o.now(), last),
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if firstTurn && session.Title == entity.DefaultSessionTitle {
		session.Title = TitleFrom(in.Text)
	}
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit turn: %w", err)
	}

	if o.History != nil {
		if err := o.History.DeleteHistory(ctx, session.Id); err != nil {
			o.Logger.Warn(module, "History cache invalidation failed", map[string]interface{}{"session_id": session.Id, "error": err.Error()})
		}
	}
	return message, nil
}

func (o *Orchestrator) fallback(ctx context.Context, in TurnInput, cause error) *TurnResult {
	fields := map[string]interface{}{
		"session_id": in.SessionId,
		"error":      cause.Error(),
		"kind":       apperror.KindOf(cause),
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		fields["timeout"] = o.Timeout.String()
	}
	o.Logger.Error(module, "Chat turn failed, returning fallback", fields)

	o.publish(ctx, events.ChatTurnCompleted(in.SessionId, string(intent.TypeQuestion), 0, true))
	return &TurnResult{Response: constant.FallbackResponse, Fallback: true, Intent: intent.Default()}
}

func (o *Orchestrator) publish(ctx context.Context, event events.Event) {
	if o.Publisher == nil {
		return
	}
	if err := o.Publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		o.Logger.Warn(module, "Event publish failed", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}

func (o *Orchestrator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}

// NextTimestamp keeps created-at strictly increasing within a session, at the
// microsecond resolution postgres stores.
func NextTimestamp(now time.Time, last *entity.ChatMessage) time.Time {
	if last == nil {
		return now
	}
	if floor := last.CreatedAt.Add(time.Microsecond); now.Before(floor) {
		return floor
	}
	return now
}

// TitleFrom names a session after the first rune-bounded slice of its first message.
func TitleFrom(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= titleRunes {
		return text
	}
	return string([]rune(text)[:titleRunes])
}
