package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"price-loader/internal/storage"
)

var priceColumns = []string{"id", "item", "price", "currency", "created_at", "updated_at", "system_timestamp"}

// Source timestamps must carry an explicit UTC offset. A zone-naive
// timestamp cannot be compared against the checkpoint safely, so it is a
// data error, not something to coerce.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05-07",
}

// ReadPriceRecords parses one CSV file into price records. The first row is
// the header; columns may appear in any order. Any malformed row fails the
// whole file: the caller receives an empty set and an error to log, and the
// run moves on to the next file.
func ReadPriceRecords(path string) ([]storage.PriceRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range priceColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, col)
		}
	}

	var records []storage.PriceRecord
	for line := 2; ; line++ {
		row, readErr := reader.Read()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s line %d: %w", path, line, readErr)
		}

		rec, parseErr := parsePriceRow(row, index)
		if parseErr != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, parseErr)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parsePriceRow(row []string, index map[string]int) (storage.PriceRecord, error) {
	field := func(name string) (string, error) {
		i := index[name]
		if i >= len(row) {
			return "", fmt.Errorf("missing value for %q", name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	var rec storage.PriceRecord
	var err error

	if rec.ID, err = field("id"); err != nil {
		return storage.PriceRecord{}, err
	}
	if rec.ID == "" {
		return storage.PriceRecord{}, fmt.Errorf("empty id")
	}
	if rec.Item, err = field("item"); err != nil {
		return storage.PriceRecord{}, err
	}
	if rec.Currency, err = field("currency"); err != nil {
		return storage.PriceRecord{}, err
	}

	priceStr, err := field("price")
	if err != nil {
		return storage.PriceRecord{}, err
	}
	if rec.Price, err = decimal.NewFromString(priceStr); err != nil {
		return storage.PriceRecord{}, fmt.Errorf("parse price %q: %w", priceStr, err)
	}
	if rec.Price.IsNegative() {
		return storage.PriceRecord{}, fmt.Errorf("negative price %q", priceStr)
	}

	if rec.CreatedAt, err = parseTimestampField(row, index, "created_at"); err != nil {
		return storage.PriceRecord{}, err
	}
	if rec.UpdatedAt, err = parseTimestampField(row, index, "updated_at"); err != nil {
		return storage.PriceRecord{}, err
	}
	if rec.SystemTimestamp, err = parseTimestampField(row, index, "system_timestamp"); err != nil {
		return storage.PriceRecord{}, err
	}

	return rec, nil
}

func parseTimestampField(row []string, index map[string]int, name string) (time.Time, error) {
	i := index[name]
	if i >= len(row) {
		return time.Time{}, fmt.Errorf("missing value for %q", name)
	}
	value := strings.TrimSpace(row[i])
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %s %q: no timezone-aware layout matched", name, value)
}
