package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type execCall struct {
	sql  string
	args []any
}

// fakeExecer records statements and returns scripted command tags.
type fakeExecer struct {
	calls []execCall
	tags  []pgconn.CommandTag
	errs  []error
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	i := len(f.calls)
	f.calls = append(f.calls, execCall{sql: sql, args: args})
	if i < len(f.errs) && f.errs[i] != nil {
		return pgconn.CommandTag{}, f.errs[i]
	}
	if i < len(f.tags) {
		return f.tags[i], nil
	}
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", len(args))), nil
}

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func tag(affected int) pgconn.CommandTag {
	return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", affected))
}

func TestInsertStatementSQL(t *testing.T) {
	stmt := ItemPricesInsert()
	sql, err := stmt.SQL(2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if !strings.HasPrefix(sql, "INSERT INTO item_prices (id, item, price, currency, created_at, updated_at, system_timestamp) VALUES ") {
		t.Fatalf("unexpected prefix: %s", sql)
	}
	if !strings.Contains(sql, "($1, $2, $3, $4, $5, $6, $7), ($8, $9, $10, $11, $12, $13, $14)") {
		t.Fatalf("placeholders should number across rows: %s", sql)
	}
	if !strings.HasSuffix(sql, "ON CONFLICT (id, system_timestamp) DO NOTHING") {
		t.Fatalf("conflict clause missing: %s", sql)
	}
}

func TestInsertStatementSQLUpdateClause(t *testing.T) {
	stmt := CurrenciesUpsert()
	sql, err := stmt.SQL(1)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(sql, "ON CONFLICT (currency_code) DO UPDATE SET currency_name = EXCLUDED.currency_name, currency_symbol = EXCLUDED.currency_symbol") {
		t.Fatalf("update clause missing: %s", sql)
	}
}

func TestInsertStatementSQLValidation(t *testing.T) {
	if _, err := (InsertStatement{}).SQL(1); err == nil {
		t.Fatal("missing table should fail")
	}
	if _, err := (InsertStatement{Table: "t"}).SQL(1); err == nil {
		t.Fatal("missing columns should fail")
	}
	if _, err := (InsertStatement{Table: "t", Columns: []string{"a"}}).SQL(0); err == nil {
		t.Fatal("zero rows should fail")
	}
}

func TestBatchInserterEmptyInput(t *testing.T) {
	db := &fakeExecer{}
	inserter := NewBatchInserter(db, 10, noopLogger())

	affected, err := inserter.Insert(context.Background(), ItemPricesInsert(), nil)
	if err != nil {
		t.Fatalf("empty input should not fail: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 affected, got %d", affected)
	}
	if len(db.calls) != 0 {
		t.Fatalf("empty input must not touch the store, saw %d calls", len(db.calls))
	}
}

func TestBatchInserterChunks(t *testing.T) {
	db := &fakeExecer{tags: []pgconn.CommandTag{tag(2), tag(2), tag(1)}}
	inserter := NewBatchInserter(db, 2, noopLogger())

	stmt := InsertStatement{Table: "t", Columns: []string{"a", "b"}}
	rows := [][]any{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}

	affected, err := inserter.Insert(context.Background(), stmt, rows)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if len(db.calls) != 3 {
		t.Fatalf("5 rows at chunk size 2 should take 3 round trips, took %d", len(db.calls))
	}
	if affected != 5 {
		t.Fatalf("expected 5 affected, got %d", affected)
	}
	if len(db.calls[0].args) != 4 || len(db.calls[2].args) != 2 {
		t.Fatalf("unexpected arg counts: %d, %d", len(db.calls[0].args), len(db.calls[2].args))
	}
}

func TestBatchInserterConflictAwareCount(t *testing.T) {
	// Three rows in, one suppressed as a duplicate: the reported count is 2.
	db := &fakeExecer{tags: []pgconn.CommandTag{tag(2)}}
	inserter := NewBatchInserter(db, 10, noopLogger())

	stmt := ItemPricesInsert()
	rows := [][]any{
		make([]any, 7),
		make([]any, 7),
		make([]any, 7),
	}

	affected, err := inserter.Insert(context.Background(), stmt, rows)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 affected for a 3-row batch with one duplicate, got %d", affected)
	}
}

func TestBatchInserterContinuesAfterChunkFailure(t *testing.T) {
	db := &fakeExecer{
		errs: []error{errors.New("deadlock detected"), nil},
		tags: []pgconn.CommandTag{{}, tag(2)},
	}
	inserter := NewBatchInserter(db, 2, noopLogger())

	stmt := InsertStatement{Table: "t", Columns: []string{"a"}}
	rows := [][]any{{1}, {2}, {3}, {4}}

	affected, err := inserter.Insert(context.Background(), stmt, rows)
	if err != nil {
		t.Fatalf("a chunk failure must not abort the batch: %v", err)
	}
	if len(db.calls) != 2 {
		t.Fatalf("both chunks should be attempted, saw %d calls", len(db.calls))
	}
	if affected != 2 {
		t.Fatalf("only the surviving chunk counts, got %d", affected)
	}
}

func TestBatchInserterRowWidthMismatch(t *testing.T) {
	db := &fakeExecer{}
	inserter := NewBatchInserter(db, 10, noopLogger())

	stmt := InsertStatement{Table: "t", Columns: []string{"a", "b"}}
	if _, err := inserter.Insert(context.Background(), stmt, [][]any{{1}}); err == nil {
		t.Fatal("row width mismatch should fail")
	}
}
