package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	countPricesSQL = `SELECT COUNT(*) FROM item_prices;`

	listCurrentPricesSQL = `SELECT
        id,
        item,
        price,
        currency,
        converted_price,
        system_timestamp
    FROM current_item_prices
    ORDER BY item, id
    LIMIT $1;`

	listItemHistorySQL = `SELECT
        id,
        item,
        price,
        currency,
        valid_from,
        valid_to,
        is_current
    FROM item_price_history
    WHERE item = $1
    ORDER BY id, valid_from;`
)

// CheckpointStore defines operations for ingestion checkpoints.
type CheckpointStore interface {
	GetLatestCheckpoint(ctx context.Context, name string) (*time.Time, error)
	AdvanceCheckpoint(ctx context.Context, name string, ts time.Time) error
}

// PriceReader defines the read side over the derived views.
type PriceReader interface {
	CountPrices(ctx context.Context) (int64, error)
	ListCurrentPrices(ctx context.Context, limit int) ([]CurrentPrice, error)
	ListItemHistory(ctx context.Context, item string) ([]HistorySlice, error)
}

// Store aggregates access to prices, currencies, and checkpoints.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Pool exposes the underlying pool for the batch inserter.
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// CountPrices counts stored price records.
func (s *Store) CountPrices(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countPricesSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count prices: %w", scanErr)
	}
	return count, nil
}

// ListCurrentPrices lists rows from the converted current price view.
func (s *Store) ListCurrentPrices(ctx context.Context, limit int) ([]CurrentPrice, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listCurrentPricesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list current prices: %w", queryErr)
	}
	defer rows.Close()

	prices := make([]CurrentPrice, 0, limit)
	for rows.Next() {
		var (
			rec          CurrentPrice
			priceStr     string
			convertedStr *string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Item,
			&priceStr,
			&rec.Currency,
			&convertedStr,
			&rec.SystemTimestamp,
		); err != nil {
			return nil, err
		}

		var convErr error
		rec.Price, convErr = decimal.NewFromString(priceStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse price: %w", convErr)
		}
		if convertedStr != nil {
			converted, convErr := decimal.NewFromString(*convertedStr)
			if convErr != nil {
				return nil, fmt.Errorf("parse converted price: %w", convErr)
			}
			rec.ConvertedPrice = &converted
		}

		prices = append(prices, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return prices, nil
}

// ListItemHistory lists validity intervals for every record of an item.
func (s *Store) ListItemHistory(ctx context.Context, item string) ([]HistorySlice, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listItemHistorySQL, item)
	if queryErr != nil {
		return nil, fmt.Errorf("list item history: %w", queryErr)
	}
	defer rows.Close()

	slices := make([]HistorySlice, 0)
	for rows.Next() {
		var (
			rec      HistorySlice
			priceStr string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Item,
			&priceStr,
			&rec.Currency,
			&rec.ValidFrom,
			&rec.ValidTo,
			&rec.IsCurrent,
		); err != nil {
			return nil, err
		}

		var convErr error
		rec.Price, convErr = decimal.NewFromString(priceStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse price: %w", convErr)
		}

		slices = append(slices, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return slices, nil
}
