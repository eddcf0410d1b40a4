package bootstrap

import (
	"context"
	"fmt"
	"time"

	"edushelf-be/internal/cache"
	"edushelf-be/internal/config"
	"edushelf-be/internal/controller"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/pkg/serverutils"
	"edushelf-be/internal/repository/memory"
	"edushelf-be/internal/repository/unitofwork"
	"edushelf-be/internal/service"
	"edushelf-be/pkg/chunker"
	"edushelf-be/pkg/embedding"
	"edushelf-be/pkg/embedding/jina"
	"edushelf-be/pkg/events"
	"edushelf-be/pkg/extract"
	"edushelf-be/pkg/jobqueue"
	"edushelf-be/pkg/keylock"
	"edushelf-be/pkg/llm"
	"edushelf-be/pkg/llm/factory"
	"edushelf-be/pkg/rag/chat"
	"edushelf-be/pkg/rag/indexer"
	"edushelf-be/pkg/rag/intent"
	"edushelf-be/pkg/rag/prompt"
	"edushelf-be/pkg/rag/retriever"
	"edushelf-be/pkg/storage"
	"edushelf-be/pkg/tokenbudget"

	pktNats "edushelf-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const historyTTL = 30 * time.Minute

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	AuthMiddleware     fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger  logger.ILogger
	closers []func()
}

// Providers are the external model backends. Tests substitute fakes.
type Providers struct {
	Embedding embedding.EmbeddingProvider
	LLM       llm.LLMProvider
}

// NewProviders builds the configured embedding and generation backends.
func NewProviders(cfg *config.Config) (*Providers, error) {
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	default:
		return nil, fmt.Errorf("unknown EMBEDDING_PROVIDER %q", cfg.Ai.EmbeddingProvider)
	}

	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL, cfg.Keys.HuggingFace)
	if err != nil {
		return nil, err
	}
	return &Providers{Embedding: embeddingProvider, LLM: llmProvider}, nil
}

// NewContainer wires the application. db may be nil when STORE_DRIVER=memory.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, providers *Providers, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if cfg.Database.Driver == "memory" {
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
		sysLogger.Warn("BOOTSTRAP", "Using in-memory store, data is lost on restart", nil)
	} else {
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	// 2. Providers, validated before anything is indexed
	probeCtx, cancel := context.WithTimeout(ctx, cfg.Ai.LLMTimeout)
	defer cancel()
	if err := embedding.ValidateDimension(probeCtx, providers.Embedding, cfg.Ai.EmbeddingDimension); err != nil {
		return nil, fmt.Errorf("embedding provider check: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "Providers ready", map[string]interface{}{
		"embedding": cfg.Ai.EmbeddingProvider,
		"dimension": cfg.Ai.EmbeddingDimension,
		"llm":       cfg.Ai.LLMProvider,
		"model":     cfg.Ai.LLMModel,
	})

	budget, err := tokenbudget.New(cfg.Rag.TokenEncoding)
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.NewLocalStorage(cfg.App.UploadDir)
	if err != nil {
		return nil, err
	}

	// 3. Infrastructure, optional
	var eventPublisher events.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "NATS unavailable, events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var history chat.HistoryStore
	if cfg.App.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Redis unavailable, history cache disabled", map[string]interface{}{"error": err.Error()})
		} else {
			history = cache.NewHistoryCache(rdb, historyTTL)
			c.closers = append(c.closers, func() { rdb.Close() })
		}
	}

	// 4. RAG pipeline
	locks := keylock.New()
	queue := jobqueue.New(cfg.App.IndexTopic, sysLogger)
	c.closers = append(c.closers, func() { queue.Close() })

	idx := indexer.New(
		uowFactory,
		fileStorage,
		extract.NewFileExtractor(),
		chunker.NewSentenceChunker(cfg.Rag.ChunkSize),
		providers.Embedding,
		cfg.Ai.EmbeddingDimension,
		locks,
		sysLogger,
	).WithEmbedTimeout(cfg.Ai.EmbeddingTimeout)

	orchestrator := chat.NewOrchestrator(chat.Dependencies{
		UowFactory:  uowFactory,
		Classifier:  intent.NewClassifier(providers.LLM, sysLogger),
		Retriever:   retriever.New(providers.Embedding, cfg.Ai.EmbeddingDimension, sysLogger),
		Assembler:   prompt.NewAssembler(budget, cfg.Rag.ContextTokenBudget, sysLogger),
		LLMProvider: providers.LLM,
		History:     history,
		Publisher:   eventPublisher,
		Locks:       locks,
		Timeout:     cfg.Ai.LLMTimeout,
		Logger:      sysLogger,
	})

	// 5. Services
	publisherService := service.NewPublisherService(queue)
	consumerService := service.NewConsumerService(queue, idx, eventPublisher, sysLogger)
	documentService := service.NewDocumentService(uowFactory, fileStorage, publisherService, eventPublisher, cfg.Rag.IndexBatchSize, locks, sysLogger)
	chatService := service.NewChatService(uowFactory, orchestrator, history, sysLogger)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.DocumentController = controller.NewDocumentController(documentService)
	c.AuthMiddleware = serverutils.NewJwtMiddleware(cfg.Keys.JwtSecret)
	c.ConsumerService = consumerService
	return c, nil
}

// Close releases background resources in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.Logger.Sync()
}
