package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/thereayou/blog-api/internal/config"
)

func main() {
	dotenv := config.LoadDotEnv()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg)
	if !dotenv {
		logger.Info(".env not found, using environment variables")
	}

	srv, err := NewServer(cfg, logger)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Fatal(err)
	}
}
