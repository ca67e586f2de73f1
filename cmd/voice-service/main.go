// main package for the voice-service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/api"
	"github.com/book-expert/voice-service/internal/archive"
	"github.com/book-expert/voice-service/internal/config"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/book-expert/voice-service/internal/embedding"
	"github.com/book-expert/voice-service/internal/engine"
	"github.com/book-expert/voice-service/internal/objectstore"
	"github.com/book-expert/voice-service/internal/orchestrator"
	"github.com/book-expert/voice-service/internal/staging"
	"github.com/book-expert/voice-service/internal/voicestore"
	"github.com/nats-io/nats.go"
)

const shutdownGrace = 10 * time.Second

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "voice-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// buildSink connects the optional NATS side: a JetStream object store mirror
// for generated audio plus a completion-event publisher. A nil sink means
// generation serves from the local output directory only.
func buildSink(cfg *config.Config, log *logger.Logger) (core.ArtifactSink, func(), error) {
	if !cfg.NATS.Enabled() {
		log.Info("NATS disabled; artifacts stay local.")

		return nil, func() {}, nil
	}

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.ArtifactBucket, cfg.NATS.ArtifactTTL())
	if err != nil {
		natsConnection.Close()

		return nil, nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	sink := archive.New(store, natsConnection, cfg.NATS.GenerationCompletedSubject, log)

	return sink, natsConnection.Close, nil
}

func run() error {
	// Temporary logger for the bootstrap process; the configured one
	// replaces it once the paths are known.
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	bootstrapLog.Info("Bootstrap logger created.")

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	sink, closeSink, err := buildSink(cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	stage := staging.New(cfg.Paths.StagingDir)
	extractor := embedding.New(
		cfg.Engine.PythonBinary,
		cfg.Engine.ExtractScript,
		cfg.Engine.ExtractTimeout(),
		log,
	)
	profiles := voicestore.New(cfg.Paths.VoicesDir, stage, extractor, log)
	runner := engine.NewRunner(
		cfg.Engine.PythonBinary,
		cfg.Engine.GenerateScript,
		cfg.Engine.GenerateTimeout(),
		log,
	)
	generator := orchestrator.New(profiles, stage, runner, sink, cfg.Paths.OutputDir, log)
	server := api.New(stage, profiles, generator, cfg.Paths.OutputDir, log)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)

	go func() {
		listenErr := httpServer.ListenAndServe()
		if listenErr != nil && !errors.Is(listenErr, http.ErrServerClosed) {
			serveErr <- listenErr
		}

		close(serveErr)
	}()

	log.System("Voice-Service successfully initialized. Listening on port %d", cfg.HTTP.Port)

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received.")
	case listenErr := <-serveErr:
		if listenErr != nil {
			return fmt.Errorf("http server failed: %w", listenErr)
		}

		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("http server shutdown failed: %w", shutdownErr)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
