package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"options-dashboard/internal/api"
	"options-dashboard/internal/config"
	"options-dashboard/internal/marketdata"
	"options-dashboard/internal/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment.LogLevel)
	logger.Infof("Starting options analytics service in %s mode", cfg.Environment.Mode)

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("Service error: %v", err)
	}

	logger.Info("Service stopped")
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close storage")
		}
	}()

	client := marketdata.NewClient(cfg.Tradier.APIKey, cfg.IsSandbox(),
		marketdata.WithBaseURL(cfg.Tradier.BaseURL),
		marketdata.WithTimeout(cfg.GetHTTPTimeout()),
		marketdata.WithRetryPolicy(marketdata.RetryPolicy{
			MaxRetries:     cfg.GetMaxRetries(),
			InitialBackoff: cfg.GetInitialBackoff(),
			MaxBackoff:     cfg.GetMaxBackoff(),
		}),
	)
	provider := marketdata.NewCircuitBreakerProvider(client)

	server := api.NewServer(api.Config{Port: cfg.Server.Port}, provider, store, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
