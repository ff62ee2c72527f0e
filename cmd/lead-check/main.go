package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/lead-triage/internal/core"
	"github.com/mikey/lead-triage/internal/di"
	"github.com/mikey/lead-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run crawls the mailbox once and prints the triaged leads
func run(logger *zap.Logger, service *core.TriageService, sink ports.ResultSink) error {
	defer logger.Sync()
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := service.Triage(ctx)
	if result != nil {
		if emitErr := sink.Emit(context.Background(), result); emitErr != nil {
			return fmt.Errorf("failed to write result: %w", emitErr)
		}
	}
	if err != nil {
		logger.Warn("Triage interrupted, result is partial", zap.Error(err))
	}
	return nil
}
