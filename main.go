package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"recipebox/internal/app"
	"recipebox/internal/config"
	"recipebox/internal/logger"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "recipebox: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	// --- Application ---
	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Warn("error while releasing resources", zap.Error(err))
		}
	}()

	if err := application.StartEventConsumer(); err != nil {
		log.Warn("failed to start recipe event consumer", zap.Error(err))
	}

	// --- Start HTTP Server ---
	log.Info("starting server", zap.String("port", cfg.App.Port), zap.String("db_driver", cfg.Database.Driver))

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Fiber.Listen(cfg.App.Port)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("shutting down server")
	if err := application.Fiber.Shutdown(); err != nil {
		log.Error("error during Fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}
