package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/quatton/filesmanager/pkg/db"
	"github.com/quatton/filesmanager/pkg/fmlog"
)

func main() {
	logger := fmlog.NewDefault().Component("migrate")

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found")
	} else {
		logger.Info("Loaded .env file")
	}

	ctx := context.Background()

	var cfg db.Config
	if err := envconfig.Process("DB", &cfg); err != nil {
		logger.Fatalf("failed to process env vars: %v", err)
	}

	database, err := db.New(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", "host", cfg.Host, "err", err)
	}
	defer database.Close()

	logger.Info("Running migrations...")
	msg, err := db.Migrate(ctx, database)
	if err != nil {
		logger.Fatalf("failed to migrate: %v", err)
	}
	logger.Info(msg)
}
