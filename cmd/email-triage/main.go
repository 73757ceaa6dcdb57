package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/ports"
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
	filters []ports.EmailFilter,
	completer core.Completer,
) error {
	defer logger.Sync()

	if cfg.GetString("logging.level") != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Start the intakes
	for i, f := range filters {
		if err := f.Start(); err != nil {
			logger.Error("Failed to start intake", zap.Error(err))
			for _, started := range filters[:i] {
				_ = started.Stop()
			}
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	for _, f := range filters {
		if err := f.Stop(); err != nil {
			logger.Error("Failed to stop intake", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := completer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
