package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"price-loader/internal/scheduler"
)

// Ingest runs one incremental ingestion pass over the data directory.
func (a *App) Ingest(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	summary, err := a.newOrchestrator(store).Run(ctx)
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		a.Logger.Warn().
			Int("failed", summary.Failed).
			Int("files", summary.Files).
			Msg("some files failed; they will be retried on the next pass")
	}
	return nil
}

// Watch re-runs the incremental pass on an aligned interval until
// interrupted. Each pass resumes from the checkpoint, so passes over
// unchanged files insert nothing.
func (a *App) Watch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	orchestrator := a.newOrchestrator(store)

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToInterval,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting watch loop")
	err = sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, runErr := orchestrator.Run(ctx)
		return runErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}
