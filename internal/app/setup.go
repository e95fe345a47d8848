package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// SetupOptions configure the setup run.
type SetupOptions struct {
	// AssumeYes answers the destructive reset prompt without asking.
	AssumeYes bool
	// Prompt and Output default to stdin/stdout; tests substitute buffers.
	Prompt io.Reader
	Output io.Writer
}

// Setup prepares the database end to end: optional destructive reset (behind
// an interactive confirmation), schema and view creation, reference-data
// refresh, then an initial ingestion pass.
func (a *App) Setup(ctx context.Context, opts SetupOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	base := a.Config.Rates.BaseCurrency

	reset, err := a.confirmReset(opts)
	if err != nil {
		return err
	}
	if reset {
		a.Logger.Warn().Msg("resetting database: dropping tables and views")
		if err := store.Reset(ctx, base); err != nil {
			return err
		}
	}

	if err := store.CreateSchema(ctx, base); err != nil {
		return err
	}
	if err := store.CreateViews(ctx, base); err != nil {
		return err
	}
	a.Logger.Info().Str("base", base).Msg("schema and derived views ready")

	if err := a.refreshRates(ctx, store); err != nil {
		return err
	}

	summary, err := a.newOrchestrator(store).Run(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info().
		Int("files", summary.Files).
		Int("failed", summary.Failed).
		Int64("inserted", summary.Inserted).
		Msg("setup completed")
	return nil
}

func (a *App) confirmReset(opts SetupOptions) (bool, error) {
	if opts.AssumeYes {
		return true, nil
	}
	if opts.Prompt == nil || opts.Output == nil {
		return false, nil
	}

	fmt.Fprint(opts.Output, "Reset the database? This drops all tables and views. (Y/N): ")
	reader := bufio.NewReader(opts.Prompt)
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false, fmt.Errorf("read reset confirmation: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}
