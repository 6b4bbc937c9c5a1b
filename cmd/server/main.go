package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/config"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/draft"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/export"
	httpserver "github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/interfaces/http"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/ocr"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/pipeline"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/pkg/database"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting receipt processing service",
		zap.Int("port", cfg.Server.Port),
		zap.String("ledger", cfg.Export.LedgerPath))

	// Create data directories before anything opens files in them
	for _, dir := range []string{filepath.Dir(cfg.Database.Path), cfg.Export.OutputDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Core pipeline: merge, field mapping, categorization
	processor := pipeline.NewProcessor(cfg.Merge.ConfidenceMargin, logger)

	// Draft store and Excel ledger
	draftStore := draft.NewStore(db.DB, logger)
	ledger := export.NewLedgerWriter(cfg.Export.LedgerPath, logger)

	// OCR producers are optional; without an API key the extract endpoint
	// reports unavailable and the process endpoint still works on
	// pre-extracted payloads.
	var renderer *ocr.PageRenderer
	var extractor *ocr.VisionExtractor
	if cfg.OCR.APIKey != "" {
		renderer = ocr.NewPageRenderer(logger)
		extractor = ocr.NewVisionExtractor(cfg.OCR.APIKey, cfg.OCR.Model, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not set, vision extraction disabled")
	}

	handlers := httpserver.NewHandlers(
		processor,
		draftStore,
		ledger,
		renderer,
		extractor,
		cfg.OCR.Timeout,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}
