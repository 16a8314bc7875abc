// mockstore runs the development ticket store: the same HTTP contract
// as the production backend, with an in-memory store and a simulated
// AI analysis pipeline.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-triage/internal/config"
	"github.com/spec-kit/complaint-triage/internal/mockstore"
	"github.com/spec-kit/complaint-triage/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var addr string
	var failureRate float64
	flagSet := pflag.NewFlagSet("mockstore", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", cfg.Mock.Addr(), "listen address")
	flagSet.Float64Var(&failureRate, "failure-rate", cfg.Mock.FailureRate, "fraction of analyses that fail")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatalf("failed to parse flags: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	server := mockstore.NewServer(logger, mockstore.AnalyzerOptions{
		ProcessingDelay: cfg.Mock.ProcessingDelay(),
		RetryDelay:      cfg.Mock.RetryDelay(),
		FailureRate:     failureRate,
		MaxAttempts:     cfg.Mock.MaxProcessingAttempts,
	})

	go func() {
		logger.Info("mockstore listening", zap.String("addr", addr))
		if err := server.App().Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = server.App().Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
