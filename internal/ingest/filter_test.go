package ingest

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"price-loader/internal/storage"
)

func recordAt(id string, ts time.Time) storage.PriceRecord {
	return storage.PriceRecord{
		ID:              id,
		Item:            "apples",
		Price:           decimal.NewFromInt(10),
		Currency:        "NOK",
		CreatedAt:       ts,
		UpdatedAt:       ts,
		SystemTimestamp: ts,
	}
}

func TestFilterAfterNilCheckpointPassesAll(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []storage.PriceRecord{
		recordAt("a", base),
		recordAt("b", base.Add(time.Minute)),
	}

	kept := FilterAfter(records, nil)
	if len(kept) != len(records) {
		t.Fatalf("nil checkpoint should pass all records, got %d of %d", len(kept), len(records))
	}
}

func TestFilterAfterStrictInequality(t *testing.T) {
	checkpoint := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []storage.PriceRecord{
		recordAt("before", checkpoint.Add(-time.Second)),
		recordAt("at", checkpoint),
		recordAt("after", checkpoint.Add(time.Second)),
	}

	kept := FilterAfter(records, &checkpoint)

	if len(kept) != 1 {
		t.Fatalf("expected 1 record, got %d", len(kept))
	}
	if kept[0].ID != "after" {
		t.Fatalf("record exactly at the checkpoint must not pass, kept %q", kept[0].ID)
	}
}

func TestFilterAfterTimezoneAware(t *testing.T) {
	// 13:00+01:00 is exactly 12:00 UTC; a record there must not pass a
	// 12:00 UTC checkpoint.
	checkpoint := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	oslo := time.FixedZone("CET", 3600)
	records := []storage.PriceRecord{
		recordAt("same-instant", time.Date(2024, 3, 1, 13, 0, 0, 0, oslo)),
		recordAt("later", time.Date(2024, 3, 1, 13, 0, 1, 0, oslo)),
	}

	kept := FilterAfter(records, &checkpoint)
	if len(kept) != 1 || kept[0].ID != "later" {
		t.Fatalf("offset-aware comparison failed, kept %v", kept)
	}
}

func TestFilterAfterIdempotence(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var batch []storage.PriceRecord
	for i := 0; i < 10; i++ {
		batch = append(batch, recordAt("r", start.Add(time.Duration(i)*time.Hour)))
	}

	first := start.Add(2 * time.Hour)
	second := start.Add(6 * time.Hour)

	keptFirst := FilterAfter(batch, &first)
	keptSecond := FilterAfter(batch, &second)

	// Advancing the checkpoint removes exactly the rows in (first, second].
	if len(keptFirst)-len(keptSecond) != 4 {
		t.Fatalf("expected 4 rows removed by the advance, got %d", len(keptFirst)-len(keptSecond))
	}
	for _, rec := range keptSecond {
		if !rec.SystemTimestamp.After(second) {
			t.Fatalf("record at %s should not survive checkpoint %s", rec.SystemTimestamp, second)
		}
	}
}
