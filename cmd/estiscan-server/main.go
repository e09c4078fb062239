// estiscan-server exposes the estimation engine over HTTP.
package main

import (
	"context"
	"net/http"
	"os"

	"estiscan/adapters/api"
	"estiscan/adapters/postgres"
	"estiscan/adapters/rng"
	"estiscan/internal"
	"estiscan/internal/batch"
	"estiscan/internal/config"
	"estiscan/ports"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger := internal.DefaultLogger.WithTag("server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration: %v", err)
		os.Exit(1)
	}

	var runs ports.RunRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			logger.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(context.Background(), db); err != nil {
			logger.Error("migration: %v", err)
			os.Exit(1)
		}
		runs = postgres.NewRunRepository(db)
		logger.Info("run persistence enabled")
	}

	engine := batch.NewEngine(rng.NewDeterministicRNG())
	server := api.NewServer(engine, runs)

	addr := ":" + cfg.Server.Port
	logger.Info("listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
}
