package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/lead-triage/internal/config"
	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/di"
	"github.com/mikey/lead-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.TriageService,
	sink ports.ResultSink,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	triageCfg, err := cfg.GetTriage()
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting lead triage", zap.Duration("poll_interval", triageCfg.PollInterval))

	for {
		if err := runOnce(ctx, logger, service, sink); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("Triage run failed", zap.Error(err))
			}
		}

		if triageCfg.PollInterval <= 0 || !wait(ctx, triageCfg.PollInterval) {
			break
		}
	}

	logger.Info("Shutting down...")

	if err := sink.Close(); err != nil {
		logger.Error("Failed to close result sink", zap.Error(err))
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}

// runOnce triages the mailbox and emits the result, partial or not
func runOnce(ctx context.Context, logger *zap.Logger, service *core.TriageService, sink ports.ResultSink) error {
	result, err := service.Triage(ctx)
	if result != nil {
		// Emit even on cancellation so collected leads are not lost
		if emitErr := sink.Emit(context.Background(), result); emitErr != nil {
			logger.Error("Failed to emit triage result", zap.Error(emitErr))
		}
	}
	return err
}

// wait blocks for d and reports false if ctx ended first
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
