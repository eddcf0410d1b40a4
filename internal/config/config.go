package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
	IndexTopic         string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type APIKeys struct {
	HuggingFace  string
	Jina         string
	GoogleGemini string
	JwtSecret    string
}

type AIConfig struct {
	EmbeddingProvider  string // "ollama", "jina" or "gemini"
	OllamaBaseURL      string
	OllamaModel        string
	EmbeddingDimension int
	LLMProvider        string // "ollama" or "huggingface"
	LLMModel           string
	LLMTimeout         time.Duration
	// EmbeddingTimeout bounds each embedding call made while indexing.
	EmbeddingTimeout time.Duration
}

type RagConfig struct {
	ChunkSize          int
	ContextTokenBudget int
	// IndexBatchSize of 0 persists every chunk of a document in one transaction.
	IndexBatchSize int
	TokenEncoding  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			IndexTopic:         getEnv("INDEX_TOPIC", "INDEX_DOCUMENT"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("STORE_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JwtSecret:    getEnv("JWT_SECRET", "dev-secret"),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			LLMProvider:        getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:           getEnv("LLM_MODEL", "llama3"),
			LLMTimeout:         time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
			EmbeddingTimeout:   time.Duration(getEnvAsInt("EMBEDDING_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Rag: RagConfig{
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 1024),
			ContextTokenBudget: getEnvAsInt("CONTEXT_TOKEN_BUDGET", 4096),
			IndexBatchSize:     getEnvAsInt("INDEX_BATCH_SIZE", 0),
			TokenEncoding:      getEnv("TOKEN_ENCODING", "cl100k_base"),
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Connection == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required when STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Database.Driver)
	}
	if c.App.Environment == "production" && (c.Keys.JwtSecret == "" || c.Keys.JwtSecret == "dev-secret") {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Ai.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.Ai.EmbeddingDimension)
	}
	if c.Ai.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive")
	}
	if c.Ai.EmbeddingTimeout <= 0 {
		return fmt.Errorf("EMBEDDING_TIMEOUT_SECONDS must be positive")
	}
	if c.Rag.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Rag.ChunkSize)
	}
	if c.Rag.ContextTokenBudget <= 0 {
		return fmt.Errorf("CONTEXT_TOKEN_BUDGET must be positive, got %d", c.Rag.ContextTokenBudget)
	}
	if c.Rag.IndexBatchSize < 0 {
		return fmt.Errorf("INDEX_BATCH_SIZE cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
