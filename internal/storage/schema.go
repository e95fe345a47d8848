package storage

import (
	"context"
	"fmt"
	"regexp"
)

// Table name fragments are interpolated for the per-base rates table, so the
// code has to match before anything reaches fmt.Sprintf.
var baseCurrencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

const (
	createCurrenciesSQL = `CREATE TABLE IF NOT EXISTS currencies (
        currency_code VARCHAR(3) PRIMARY KEY,
        currency_name VARCHAR(50) NOT NULL,
        currency_symbol VARCHAR(10) NOT NULL,
        _inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`

	createRatesSQLTemplate = `CREATE TABLE IF NOT EXISTS %s (
        currency_code VARCHAR(3) PRIMARY KEY,
        rate DECIMAL(32, 16) NOT NULL,
        last_updated_at DATE NOT NULL,
        _inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        CONSTRAINT fk_currency_code
            FOREIGN KEY (currency_code)
            REFERENCES currencies (currency_code)
            ON DELETE CASCADE
    );`

	createItemPricesSQL = `CREATE TABLE IF NOT EXISTS item_prices (
        id UUID NOT NULL,
        item VARCHAR(100) NOT NULL,
        price DECIMAL(10, 2) NOT NULL,
        currency VARCHAR(3) NOT NULL,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
        system_timestamp TIMESTAMP WITH TIME ZONE NOT NULL,
        CONSTRAINT unique_id_timestamp UNIQUE (id, system_timestamp)
    );`

	createCheckpointsSQL = `CREATE TABLE IF NOT EXISTS processing_checkpoints (
        checkpoint_name VARCHAR(50) PRIMARY KEY,
        last_processed_timestamp TIMESTAMP WITH TIME ZONE,
        updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
    );`

	// The converted price joins against the latest rate row, not the rate
	// valid at the record's system_timestamp. A point-in-time join would
	// need versioned rate history, which is deferred.
	createCurrentPriceViewTemplate = `CREATE OR REPLACE VIEW current_item_prices AS
    SELECT
        p.id,
        p.item,
        p.price,
        p.currency,
        ROUND(p.price / r.rate, 2) AS converted_price,
        p.system_timestamp
    FROM item_prices p
    LEFT JOIN %s r ON r.currency_code = p.currency;`

	createHistoryViewSQL = `CREATE OR REPLACE VIEW item_price_history AS
    SELECT
        id,
        item,
        price,
        currency,
        system_timestamp AS valid_from,
        COALESCE(
            LEAD(system_timestamp) OVER (PARTITION BY id ORDER BY system_timestamp),
            '9999-12-31 23:59:59+00'::timestamptz
        ) AS valid_to,
        LEAD(system_timestamp) OVER (PARTITION BY id ORDER BY system_timestamp) IS NULL AS is_current
    FROM item_prices;`

	dropViewsSQL = `DROP VIEW IF EXISTS current_item_prices, item_price_history;`

	dropTablesSQLTemplate = `DROP TABLE IF EXISTS item_prices, processing_checkpoints, %s, currencies CASCADE;`
)

// RatesTableName returns the per-base conversion rates table name, rejecting
// anything but a 3-letter uppercase currency code.
func RatesTableName(base string) (string, error) {
	if !baseCurrencyPattern.MatchString(base) {
		return "", fmt.Errorf("invalid base currency %q", base)
	}
	return "currency_conversion_rates_base_" + base, nil
}

// CreateSchema creates all tables. Currencies come first because the rates
// table carries a foreign key to them.
func (s *Store) CreateSchema(ctx context.Context, base string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	ratesTable, err := RatesTableName(base)
	if err != nil {
		return err
	}

	statements := []string{
		createCurrenciesSQL,
		fmt.Sprintf(createRatesSQLTemplate, ratesTable),
		createItemPricesSQL,
		createCheckpointsSQL,
	}
	for _, stmt := range statements {
		if _, execErr := pool.Exec(ctx, stmt); execErr != nil {
			return fmt.Errorf("create schema: %w", execErr)
		}
	}
	return nil
}

// CreateViews (re)builds the derived views with replace-if-exists semantics.
func (s *Store) CreateViews(ctx context.Context, base string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	ratesTable, err := RatesTableName(base)
	if err != nil {
		return err
	}

	statements := []string{
		fmt.Sprintf(createCurrentPriceViewTemplate, ratesTable),
		createHistoryViewSQL,
	}
	for _, stmt := range statements {
		if _, execErr := pool.Exec(ctx, stmt); execErr != nil {
			return fmt.Errorf("create views: %w", execErr)
		}
	}
	return nil
}

// Reset drops the derived views and all tables. Destructive; the CLI prompts
// before calling this.
func (s *Store) Reset(ctx context.Context, base string) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	ratesTable, err := RatesTableName(base)
	if err != nil {
		return err
	}

	if _, execErr := pool.Exec(ctx, dropViewsSQL); execErr != nil {
		return fmt.Errorf("drop views: %w", execErr)
	}
	if _, execErr := pool.Exec(ctx, fmt.Sprintf(dropTablesSQLTemplate, ratesTable)); execErr != nil {
		return fmt.Errorf("drop tables: %w", execErr)
	}
	return nil
}
