package ingest

import (
	"time"

	"price-loader/internal/storage"
)

// FilterAfter keeps only records strictly newer than the checkpoint. A
// record exactly at the checkpoint was already committed by an earlier run
// and must not pass again. A nil checkpoint means first run: everything
// passes.
func FilterAfter(records []storage.PriceRecord, checkpoint *time.Time) []storage.PriceRecord {
	if checkpoint == nil {
		return records
	}

	kept := make([]storage.PriceRecord, 0, len(records))
	for _, rec := range records {
		if rec.SystemTimestamp.After(*checkpoint) {
			kept = append(kept, rec)
		}
	}
	return kept
}
