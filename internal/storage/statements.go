package storage

// ItemPricesInsert is the insert template for price records. Conflicts on
// the (id, system_timestamp) identity are discarded, which is what makes
// re-running ingestion over the same files idempotent.
func ItemPricesInsert() InsertStatement {
	return InsertStatement{
		Table:   "item_prices",
		Columns: []string{"id", "item", "price", "currency", "created_at", "updated_at", "system_timestamp"},
		Conflict: &ConflictClause{
			Columns: []string{"id", "system_timestamp"},
		},
	}
}

// CurrenciesUpsert is the upsert template for currency metadata.
func CurrenciesUpsert() InsertStatement {
	return InsertStatement{
		Table:   "currencies",
		Columns: []string{"currency_code", "currency_name", "currency_symbol"},
		Conflict: &ConflictClause{
			Columns: []string{"currency_code"},
			Update:  []string{"currency_name", "currency_symbol"},
		},
	}
}

// RatesUpsert is the upsert template for the per-base conversion rates
// table. No rate history is retained; each refresh overwrites.
func RatesUpsert(base string) (InsertStatement, error) {
	table, err := RatesTableName(base)
	if err != nil {
		return InsertStatement{}, err
	}
	return InsertStatement{
		Table:   table,
		Columns: []string{"currency_code", "rate", "last_updated_at"},
		Conflict: &ConflictClause{
			Columns: []string{"currency_code"},
			Update:  []string{"rate", "last_updated_at"},
		},
	}, nil
}

// PriceRow flattens a record into the ItemPricesInsert column order.
func PriceRow(rec PriceRecord) []any {
	return []any{
		rec.ID,
		rec.Item,
		rec.Price.String(),
		rec.Currency,
		rec.CreatedAt,
		rec.UpdatedAt,
		rec.SystemTimestamp,
	}
}

// CurrencyRow flattens currency metadata into the CurrenciesUpsert column order.
func CurrencyRow(c Currency) []any {
	return []any{c.Code, c.Name, c.Symbol}
}

// RateRow flattens a rate into the RatesUpsert column order.
func RateRow(r CurrencyRate) []any {
	return []any{r.Code, r.Rate.String(), r.LastUpdatedAt}
}
