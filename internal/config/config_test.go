package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CHUNK_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 1024, cfg.Rag.ChunkSize)
	assert.Equal(t, 768, cfg.Ai.EmbeddingDimension)
	assert.Equal(t, 120*time.Second, cfg.Ai.LLMTimeout)
	assert.Equal(t, 60*time.Second, cfg.Ai.EmbeddingTimeout)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "memory"},
			Ai:       AIConfig{EmbeddingDimension: 768, LLMTimeout: time.Second, EmbeddingTimeout: time.Second},
			Rag:      RagConfig{ChunkSize: 1024, ContextTokenBudget: 4096},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid memory", func(c *Config) {}, false},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"postgres with dsn", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.Connection = "postgres://localhost/db"
		}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, true},
		{"zero dimension", func(c *Config) { c.Ai.EmbeddingDimension = 0 }, true},
		{"zero chunk size", func(c *Config) { c.Rag.ChunkSize = 0 }, true},
		{"zero budget", func(c *Config) { c.Rag.ContextTokenBudget = 0 }, true},
		{"negative batch", func(c *Config) { c.Rag.IndexBatchSize = -1 }, true},
		{"no timeout", func(c *Config) { c.Ai.LLMTimeout = 0 }, true},
		{"no embedding timeout", func(c *Config) { c.Ai.EmbeddingTimeout = 0 }, true},
		{"production default secret", func(c *Config) {
			c.App.Environment = "production"
			c.Keys.JwtSecret = "dev-secret"
		}, true},
		{"production real secret", func(c *Config) {
			c.App.Environment = "production"
			c.Keys.JwtSecret = "s3cr3t"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
