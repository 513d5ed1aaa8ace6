package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bookstore/ledger/internal/app"
	"github.com/bookstore/ledger/internal/config"
	"github.com/bookstore/ledger/internal/shell"
	"github.com/bookstore/ledger/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel, cfg.LogFile).
		With(zap.String("session", uuid.NewString()))
	defer log.Sync()

	log.Info("Ledger starting",
		zap.String("catalog_file", cfg.CatalogFile),
		zap.String("sales_file", cfg.SalesFile),
	)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}

	// Interrupts end the session through the same exit path as the menu
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := shell.New(application, os.Stdin, os.Stdout, log).Run(ctx); err != nil {
		log.Error("Session ended with error", zap.Error(err))
	}

	if err := application.Release(); err != nil {
		log.Warn("Failed to release application", zap.Error(err))
	}
}
