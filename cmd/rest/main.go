package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"edushelf-be/internal/bootstrap"
	"edushelf-be/internal/config"
	"edushelf-be/internal/pkg/logger"
	"edushelf-be/internal/server"
	"edushelf-be/internal/tracer"
	"edushelf-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	shutdownTracer := tracer.InitTracer(ctx, sysLogger)
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Driver == "postgres" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{
			Quiet: cfg.App.Environment == "production",
		})
		if err != nil {
			log.Fatalf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	providers, err := bootstrap.NewProviders(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, providers, sysLogger)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start index consumer: %v", err)
	}

	// 5. Run Server until interrupted
	srv := server.New(cfg, container)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("SERVER", "Shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := srv.Run(); err != nil {
		sysLogger.Error("SERVER", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
