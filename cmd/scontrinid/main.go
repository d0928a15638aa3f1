package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/scontrini/scontrini/internal/common"
	"github.com/scontrini/scontrini/internal/export"
	"github.com/scontrini/scontrini/internal/ocr"
	"github.com/scontrini/scontrini/internal/pipeline"
	"github.com/scontrini/scontrini/internal/repository"
	"github.com/scontrini/scontrini/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	parseOpts, err := pipeline.ParseOptionsFromConfig(cfg.Parse)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.HealthCheck(ctx, db, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	repo := repository.NewReceiptRepository(db, cfg.Database.Driver, logger)
	engine := ocr.NewTesseractEngine(ocr.Config{
		Language:         cfg.OCR.Language,
		TessdataDir:      cfg.OCR.TessdataDir,
		PSM:              cfg.OCR.PageSegMode,
		ArtifactCacheDir: cfg.OCR.ArtifactCacheDir,
		PreprocessWidth:  cfg.OCR.PreprocessWidth,
	}, logger)
	processor := pipeline.NewProcessorWithOptions(logger, engine, repo, parseOpts)
	exporter := export.NewService(repo, logger)

	svc := server.NewService(logger, processor, repo, exporter, server.Options{
		UploadDir:      cfg.OCR.ArtifactCacheDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: svc.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
