package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"edushelf-be/internal/apperror"
	"edushelf-be/internal/constant"
	"edushelf-be/internal/dto"
	"edushelf-be/internal/entity"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/repository/memory"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/pkg/chunker"
	"edushelf-be/pkg/embedding/embeddingtest"
	"edushelf-be/pkg/events"
	"edushelf-be/pkg/extract"
	"edushelf-be/pkg/jobqueue"
	"edushelf-be/pkg/keylock"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/llm/llmtest"
	"edushelf-be/pkg/rag/chat"
	"edushelf-be/pkg/rag/indexer"
	"edushelf-be/pkg/rag/intent"
	"edushelf-be/pkg/rag/prompt"
	"edushelf-be/pkg/rag/retriever"
	"edushelf-be/pkg/storage"
	"edushelf-be/pkg/tokenbudget"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dim = 32

type app struct {
	factory  unitofwork.RepositoryFactory
	storage  *storage.LocalStorage
	locks    *keylock.KeyLock
	recorder *events.Recorder
	llm      *llmtest.Provider
	docs     IDocumentService
	chats    IChatService
}

func newApp(t *testing.T, provider *llmtest.Provider) *app {
	t.Helper()
	log := logger.NewNopLogger()
	ctx, cancel := context.WithCancel(context.Background())

	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	budget, err := tokenbudget.New(tokenbudget.DefaultEncoding)
	require.NoError(t, err)

	factory := memory.NewRepositoryFactory(memory.NewStore())
	recorder := &events.Recorder{}
	embedder := embeddingtest.NewHashProvider(dim)
	locks := keylock.New()

	queue := jobqueue.New("index-test", log)
	t.Cleanup(func() {
		cancel()
		queue.Close()
	})

	idx := indexer.New(factory, st, extract.NewFileExtractor(), chunker.NewSentenceChunker(200), embedder, dim, locks, log)
	require.NoError(t, NewConsumerService(queue, idx, recorder, log).Consume(ctx))

	orch := chat.NewOrchestrator(chat.Dependencies{
		UowFactory:  factory,
		Classifier:  intent.NewClassifier(provider, log),
		Retriever:   retriever.New(embedder, dim, log),
		Assembler:   prompt.NewAssembler(budget, 4096, log),
		LLMProvider: provider,
		Publisher:   recorder,
		Locks:       locks,
		Timeout:     time.Second,
		Logger:      log,
	})

	return &app{
		factory:  factory,
		storage:  st,
		locks:    locks,
		recorder: recorder,
		llm:      provider,
		docs:     NewDocumentService(factory, st, NewPublisherService(queue), recorder, 0, locks, log),
		chats:    NewChatService(factory, orch, nil, log),
	}
}

func (a *app) waitIndexed(t *testing.T, documentId uuid.UUID) {
	t.Helper()
	assert.Eventually(t, func() bool {
		for _, e := range a.recorder.OfType(events.TypeDocumentIndexed) {
			if e.Payload()["document_id"] == documentId.String() {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func scriptedLLM(intentJSON, answer string) *llmtest.Provider {
	return &llmtest.Provider{Respond: func(ctx context.Context, history []llm.Message) (string, error) {
		if history[0].Content == constant.IntentClassifierPrompt {
			return intentJSON, nil
		}
		return answer, nil
	}}
}

const physicsText = `Newton's first law states that an object stays at rest or in uniform motion unless a force acts on it. ` +
	`This property is called inertia. Newton's second law relates force, mass and acceleration. ` +
	`The third law says every action has an equal and opposite reaction. Momentum is the product of mass and velocity. ` +
	`Energy cannot be created or destroyed, only transformed.`

func TestUploadIndexAndSummarize(t *testing.T) {
	a := newApp(t, scriptedLLM(`{"type":"summarize","documentName":"physics"}`, "Physics summary."))
	ctx := context.Background()
	owner := uuid.New()

	doc, err := a.docs.Upload(ctx, owner, "physics.txt", "text/plain", strings.NewReader(physicsText))
	require.NoError(t, err)
	assert.Equal(t, "physics.txt", doc.Title)
	assert.Equal(t, ".txt", doc.FileType)
	require.Len(t, a.recorder.OfType(events.TypeDocumentUploaded), 1)

	a.waitIndexed(t, doc.Id)

	listed, err := a.docs.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.GreaterOrEqual(t, listed[0].ChunkCount, int64(2))

	session, err := a.chats.CreateSession(ctx, owner, &dto.CreateSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "New Chat", session.Title)

	res, err := a.chats.PostTurn(ctx, owner, session.Id, &dto.SendMessageRequest{Text: "Summarize physics.txt"})
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Physics summary.", res.Reply)
	assert.Equal(t, "summarize", res.Intent)
	assert.Equal(t, int(listed[0].ChunkCount), res.ChunkCount, "whole document")
	assert.Equal(t, "Summarize physics.txt", res.ChatSessionTitle)

	calls := a.llm.Calls()
	final := calls[len(calls)-1]
	assert.Contains(t, final[len(final)-1].Content, "[physics.txt] Newton's first law")

	history, err := a.chats.GetHistory(ctx, owner, session.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Physics summary.", *history[0].ResponseText)
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  string
		want     error
	}{
		{"unsupported extension", "photo.png", "bytes", apperror.ErrUnsupportedFileType},
		{"no extension", "README", "bytes", apperror.ErrUnsupportedFileType},
		{"empty file", "empty.txt", "", apperror.ErrEmptyContent},
		{"whitespace only", "blank.txt", " \n\t", apperror.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, llmtest.Static("unused"))

			_, err := a.docs.Upload(context.Background(), uuid.New(), tt.fileName, "", strings.NewReader(tt.content))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			assert.Empty(t, a.recorder.Events())
		})
	}
}

func TestDocumentOwnership(t *testing.T) {
	a := newApp(t, llmtest.Static("unused"))
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	doc, err := a.docs.Upload(ctx, owner, "notes.txt", "text/plain", strings.NewReader("Cells divide. DNA replicates."))
	require.NoError(t, err)
	a.waitIndexed(t, doc.Id)

	_, err = a.docs.Reindex(ctx, stranger, doc.Id)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))
	_, err = a.docs.Reindex(ctx, owner, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(a.docs.Delete(ctx, stranger, doc.Id)))

	listed, err := a.docs.List(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestReindexAndDelete(t *testing.T) {
	a := newApp(t, llmtest.Static("unused"))
	ctx := context.Background()
	owner := uuid.New()

	doc, err := a.docs.Upload(ctx, owner, "notes.txt", "text/plain", strings.NewReader(physicsText))
	require.NoError(t, err)
	a.waitIndexed(t, doc.Id)

	queued, err := a.docs.Reindex(ctx, owner, doc.Id)
	require.NoError(t, err)
	assert.True(t, queued.Queued)
	assert.Eventually(t, func() bool {
		return len(a.recorder.OfType(events.TypeDocumentIndexed)) == 2
	}, 2*time.Second, 10*time.Millisecond)

	listed, err := a.docs.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	first := listed[0].ChunkCount

	require.NoError(t, a.docs.Delete(ctx, owner, doc.Id))

	listed, err = a.docs.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, listed)
	assert.Positive(t, first)

	chunks, err := a.factory.NewUnitOfWork(ctx).ChunkRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, chunks)
	require.Len(t, a.recorder.OfType(events.TypeDocumentDeleted), 1)
}

func TestDeleteWaitsForRunningIndex(t *testing.T) {
	a := newApp(t, llmtest.Static("unused"))
	ctx := context.Background()
	owner := uuid.New()

	doc, err := a.docs.Upload(ctx, owner, "notes.txt", "text/plain", strings.NewReader(physicsText))
	require.NoError(t, err)
	a.waitIndexed(t, doc.Id)

	// hold the document the way an in-flight index run does
	unlock := a.locks.Lock(doc.Id.String())
	done := make(chan error, 1)
	go func() { done <- a.docs.Delete(ctx, owner, doc.Id) }()

	select {
	case <-done:
		t.Fatal("delete ran while the document was being indexed")
	case <-time.After(50 * time.Millisecond):
	}

	late := &entity.Chunk{DocumentId: doc.Id, Content: "written by the running index", Embedding: embeddingtest.Vector("late", dim)}
	require.NoError(t, a.factory.NewUnitOfWork(ctx).ChunkRepository().CreateBulk(ctx, []*entity.Chunk{late}))
	unlock()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not finish after the index released the document")
	}

	chunks, err := a.factory.NewUnitOfWork(ctx).ChunkRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, chunks)
}

func TestChatSessionLifecycle(t *testing.T) {
	a := newApp(t, scriptedLLM(`{"type":"question"}`, "ok"))
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	older, err := a.chats.CreateSession(ctx, owner, &dto.CreateSessionRequest{Title: "  Algebra  "})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", older.Title)
	newer, err := a.chats.CreateSession(ctx, owner, &dto.CreateSessionRequest{Title: "Biology"})
	require.NoError(t, err)

	_, err = a.chats.PostTurn(ctx, owner, older.Id, &dto.SendMessageRequest{Text: "hello"})
	require.NoError(t, err)

	sessions, err := a.chats.ListSessions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, older.Id, sessions[0].Id, "active session first")
	assert.Equal(t, newer.Id, sessions[1].Id)
	assert.Equal(t, "Algebra", sessions[0].Title, "explicit title is kept")

	_, err = a.chats.GetHistory(ctx, stranger, older.Id)
	assert.ErrorIs(t, err, apperror.ErrSessionForbidden)
	_, err = a.chats.PostTurn(ctx, stranger, older.Id, &dto.SendMessageRequest{Text: "hi"})
	assert.ErrorIs(t, err, apperror.ErrSessionForbidden)
	assert.ErrorIs(t, a.chats.DeleteSession(ctx, stranger, older.Id), apperror.ErrSessionForbidden)

	require.NoError(t, a.chats.DeleteSession(ctx, owner, older.Id))
	_, err = a.chats.GetHistory(ctx, owner, older.Id)
	assert.ErrorIs(t, err, apperror.ErrSessionNotFound)

	messages, err := a.factory.NewUnitOfWork(ctx).ChatMessageRepository().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, messages)
}

func TestPostTurnFallbackIsNotAnError(t *testing.T) {
	a := newApp(t, llmtest.Failing(assert.AnError))
	ctx := context.Background()
	owner := uuid.New()

	session, err := a.chats.CreateSession(ctx, owner, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	res, err := a.chats.PostTurn(ctx, owner, session.Id, &dto.SendMessageRequest{Text: "What is inertia?"})
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, constant.FallbackResponse, res.Reply)
	assert.Nil(t, res.Message)

	history, err := a.chats.GetHistory(ctx, owner, session.Id)
	require.NoError(t, err)
	assert.Empty(t, history)
}
