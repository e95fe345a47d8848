package app

import (
	"context"

	"github.com/rs/zerolog"

	"price-loader/internal/config"
	"price-loader/internal/ingest"
	"price-loader/internal/rates"
	"price-loader/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// openStore connects the PostgreSQL pool. The store being unreachable is the
// one condition that aborts a whole run, so errors propagate here.
func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	store, err := storage.Connect(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newOrchestrator(store *storage.Store) *ingest.Orchestrator {
	inserter := storage.NewBatchInserter(store.Pool(), a.Config.Ingestion.ChunkSize, a.Logger)
	return ingest.NewOrchestrator(ingest.Options{
		DataDir:        a.Config.Ingestion.DataDir,
		CheckpointName: a.Config.Ingestion.CheckpointName,
	}, store, inserter, a.Logger)
}

func (a *App) newRatesClient() *rates.Client {
	return rates.NewClient(rates.Options{
		BaseURL:   a.Config.Rates.BaseURL,
		Timeout:   a.Config.Rates.RequestTimeout,
		UserAgent: a.Config.Rates.UserAgent,
	}, a.Logger)
}
