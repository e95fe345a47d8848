package app

import (
	"context"
	"time"

	"price-loader/internal/storage"
)

// RefreshRates fetches currency metadata and conversion rates and upserts
// them. A failed fetch is logged and skipped rather than raised: missing
// reference data only degrades the converted-price view to NULLs, it does
// not block ingestion.
func (a *App) RefreshRates(ctx context.Context) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	return a.refreshRates(ctx, store)
}

func (a *App) refreshRates(ctx context.Context, store *storage.Store) error {
	client := a.newRatesClient()
	inserter := storage.NewBatchInserter(store.Pool(), a.Config.Rates.ChunkSize, a.Logger)
	base := a.Config.Rates.BaseCurrency

	currencies, err := client.FetchCurrencies(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("currency metadata unavailable; skipping refresh")
		return nil
	}

	currencyRows := make([][]any, 0, len(currencies))
	for code, info := range currencies {
		currencyRows = append(currencyRows, storage.CurrencyRow(storage.Currency{
			Code:   code,
			Name:   info.Name,
			Symbol: info.Symbol,
		}))
	}

	affected, err := inserter.Insert(ctx, storage.CurrenciesUpsert(), currencyRows)
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("affected", affected).Msg("currencies upserted")

	table, err := client.FetchRates(ctx, base, nil)
	if err != nil {
		a.Logger.Error().Err(err).Str("base", base).Msg("conversion rates unavailable; skipping refresh")
		return nil
	}

	lastUpdated, err := time.Parse("2006-01-02", table.Date)
	if err != nil {
		lastUpdated = time.Now().UTC()
	}

	rateRows := make([][]any, 0, len(table.Rates))
	for code, rate := range table.Rates {
		rateRows = append(rateRows, storage.RateRow(storage.CurrencyRate{
			Code:          code,
			Rate:          rate,
			LastUpdatedAt: lastUpdated,
		}))
	}

	stmt, err := storage.RatesUpsert(base)
	if err != nil {
		return err
	}
	affected, err = inserter.Insert(ctx, stmt, rateRows)
	if err != nil {
		return err
	}
	a.Logger.Info().Int64("affected", affected).Str("base", base).Str("date", table.Date).Msg("conversion rates upserted")

	return nil
}
