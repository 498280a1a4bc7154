package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/the-steelix-flame/lexi-simplifai/internal/config"
	"github.com/the-steelix-flame/lexi-simplifai/internal/gcp"
	"github.com/the-steelix-flame/lexi-simplifai/internal/services"
	"github.com/the-steelix-flame/lexi-simplifai/internal/transport"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	bundle, cleanup, err := gcp.NewClientBundle(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize GCP clients", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	analyzer := services.NewAnalyzerService(bundle.Storage, bundle.OCR, bundle.Vertex, services.AnalyzerConfig{
		OCRBatchSize:   cfg.OCRBatchSize,
		MaxPromptChars: cfg.MaxPromptChars,
	})
	qa := services.NewQAService(bundle.Vertex)
	history := services.NewHistoryService(bundle.History)

	router := transport.NewRouter(analyzer, qa, history, transport.Options{
		Verifier:       bundle.Verifier,
		RequestTimeout: cfg.RequestTimeout,
		MaxUploadSize:  cfg.MaxUploadSize,
	})

	server := &http.Server{
		Addr:    net.JoinHostPort("", cfg.Port),
		Handler: router,
		// The analyze request holds the connection for the whole OCR wait,
		// so the write timeout must cover the full request budget.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout,
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", server.Addr, "requestTimeout", cfg.RequestTimeout.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}
