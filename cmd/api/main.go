// Package main provides the main entry point for the MenuPairing API server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemorsel/menupairing/internal/infrastructure/config"
	"github.com/alchemorsel/menupairing/internal/infrastructure/container"
	"go.uber.org/fx"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (default: ./config.yaml, ./config/config.yaml)")
	flag.Parse()

	os.Exit(run(*configPath))
}

const defaultShutdownTimeout = 30 * time.Second

func run(configPath string) int {
	var cfg *config.Config
	app := fx.New(container.Module(configPath), fx.Populate(&cfg))
	if err := app.Err(); err != nil {
		log.Printf("Failed to build application: %v", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, app.StartTimeout())
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		log.Printf("Failed to start application: %v", err)
		return 1
	}

	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	fmt.Fprintln(os.Stderr, "Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
		return 1
	}

	return exitCode
}

// shutdownTimeout bounds app.Stop by server.shutdown_timeout
func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.Server.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return cfg.Server.ShutdownTimeout
}
