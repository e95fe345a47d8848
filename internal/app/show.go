package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// Show prints rows from the converted current price view.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	prices, err := store.ListCurrentPrices(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(prices) == 0 {
		fmt.Fprintln(os.Stdout, "no prices found")
		return nil
	}

	base := a.Config.Rates.BaseCurrency
	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Item\tID\tPrice\tCurrency\tPrice (%s)\tObserved (UTC)\n", base)

	for _, price := range prices {
		converted := "-"
		if price.ConvertedPrice != nil {
			converted = price.ConvertedPrice.StringFixed(2)
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			price.Item,
			price.ID,
			price.Price.StringFixed(2),
			price.Currency,
			converted,
			price.SystemTimestamp.UTC().Format(time.RFC3339),
		)
	}

	writer.Flush()
	return nil
}

// Status prints the checkpoint position and the stored row count.
func (a *App) Status(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	name := a.Config.Ingestion.CheckpointName
	checkpoint, err := store.GetLatestCheckpoint(ctx, name)
	if err != nil {
		return err
	}

	count, err := store.CountPrices(ctx)
	if err != nil {
		return err
	}

	last := "never"
	if checkpoint != nil {
		last = checkpoint.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(os.Stdout, "checkpoint: %s\nlast processed: %s\nstored rows: %d\n", name, last, count)
	return nil
}
