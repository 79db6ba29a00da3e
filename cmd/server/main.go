package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/lawhelper/internal/logging"
	"github.com/dmitrijs2005/lawhelper/internal/server"
	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, zl, err := logging.New(cfg.Debug)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "app init failed", "error", err)
		return
	}

	app.Run(ctx)
}
