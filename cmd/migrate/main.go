package main

import (
	"os"

	"edushelf-be/internal/config"
	"edushelf-be/internal/model"
	"edushelf-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Quiet: true})
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Migrating EduShelf schema (embedding dimension %d)", cfg.Ai.EmbeddingDimension)

	color.Yellow("Step 1: extensions")
	for _, sql := range []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	} {
		if err := db.Exec(sql).Error; err != nil {
			color.Red("Failed: %s: %v", sql, err)
			os.Exit(1)
		}
	}

	color.Yellow("Step 2: tables")
	if err := db.AutoMigrate(
		&model.Document{},
		&model.Chunk{},
		&model.ChatSession{},
		&model.ChatMessage{},
	); err != nil {
		color.Red("AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	color.Yellow("Step 3: vector column and index")
	if err := database.EnsureVectorSchema(db, cfg.Ai.EmbeddingDimension); err != nil {
		color.Red("Failed: %v", err)
		color.Red("Existing chunks were embedded with another dimension; delete them or reindex after changing EMBEDDING_DIMENSION.")
		os.Exit(1)
	}

	color.Green("Migration completed")
}
