package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/spam-gateway/internal/di"
	"github.com/mikey/spam-gateway/internal/server"
	"github.com/mikey/spam-gateway/internal/stats"
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
	logger *zap.Logger,
	dispatcher *server.Dispatcher,
	aggregator *stats.Aggregator,
) error {
	defer logger.Sync()

	// Start the stats loop before serving so no record is ever dropped
	aggregator.Start()

	if err := dispatcher.Start(); err != nil {
		logger.Error("Failed to start dispatcher", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := dispatcher.Stop(); err != nil {
		logger.Error("Failed to stop dispatcher", zap.Error(err))
	}

	// Stop after the dispatcher so in-flight workers can still record,
	// and so the final window is flushed
	aggregator.Stop()

	logger.Info("Shutdown complete")
	return nil
}
