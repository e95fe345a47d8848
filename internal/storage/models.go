package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one observed item price from the source system. The pair
// (ID, SystemTimestamp) is unique across the store: the same item may be
// re-observed at a later system timestamp, but never twice at the same
// instant.
type PriceRecord struct {
	ID              string
	Item            string
	Price           decimal.Decimal
	Currency        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	SystemTimestamp time.Time
}

// Checkpoint is the persisted high-water mark for a named ingestion stream.
type Checkpoint struct {
	Name                   string
	LastProcessedTimestamp *time.Time
	UpdatedAt              time.Time
}

// Currency is reference metadata for a currency code.
type Currency struct {
	Code   string
	Name   string
	Symbol string
}

// CurrencyRate is one conversion rate row relative to the base currency.
type CurrencyRate struct {
	Code          string
	Rate          decimal.Decimal
	LastUpdatedAt time.Time
}

// CurrentPrice is one row of the currency-converted current price view.
// ConvertedPrice is nil when the record's currency has no rate row.
type CurrentPrice struct {
	ID              string
	Item            string
	Price           decimal.Decimal
	Currency        string
	ConvertedPrice  *decimal.Decimal
	SystemTimestamp time.Time
}

// HistorySlice is one validity interval from the type-2 history view.
type HistorySlice struct {
	ID        string
	Item      string
	Price     decimal.Decimal
	Currency  string
	ValidFrom time.Time
	ValidTo   time.Time
	IsCurrent bool
}
