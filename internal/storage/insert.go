package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// DefaultChunkSize bounds the rows submitted per insert round trip.
const DefaultChunkSize = 100

// ConflictClause describes how an insert resolves uniqueness conflicts.
// Update lists the columns to overwrite from EXCLUDED; when empty the
// conflicting row is left untouched (DO NOTHING).
type ConflictClause struct {
	Columns []string
	Update  []string
}

// InsertStatement is a structured bulk-insert template: target table, column
// list, and an optional conflict clause. Statements are built from these
// parts rather than by splicing SQL strings.
type InsertStatement struct {
	Table    string
	Columns  []string
	Conflict *ConflictClause
}

// SQL renders the statement for the given number of rows, with positional
// placeholders numbered left to right, row by row.
func (s InsertStatement) SQL(rows int) (string, error) {
	if s.Table == "" {
		return "", errors.New("insert statement: table is required")
	}
	if len(s.Columns) == 0 {
		return "", errors.New("insert statement: at least one column is required")
	}
	if rows <= 0 {
		return "", errors.New("insert statement: at least one row is required")
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(s.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(s.Columns, ", "))
	b.WriteString(") VALUES ")

	arg := 1
	for row := 0; row < rows; row++ {
		if row > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for col := range s.Columns {
			if col > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteString(")")
	}

	if s.Conflict != nil {
		b.WriteString(" ON CONFLICT (")
		b.WriteString(strings.Join(s.Conflict.Columns, ", "))
		b.WriteString(")")
		if len(s.Conflict.Update) == 0 {
			b.WriteString(" DO NOTHING")
		} else {
			b.WriteString(" DO UPDATE SET ")
			for i, col := range s.Conflict.Update {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s = EXCLUDED.%s", col, col)
			}
		}
	}

	return b.String(), nil
}

// Execer is the slice of pgx used by the batch inserter. *pgxpool.Pool
// satisfies it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// RowInserter submits row tuples for a structured insert statement and
// reports the rows actually persisted.
type RowInserter interface {
	Insert(ctx context.Context, stmt InsertStatement, rows [][]any) (int64, error)
}

// BatchInserter performs chunked bulk inserts. A failed chunk is logged and
// skipped; the remaining chunks still run. No retry is attempted here, so a
// non-transient chunk failure permanently drops those rows.
type BatchInserter struct {
	db        Execer
	chunkSize int
	logger    zerolog.Logger
}

// NewBatchInserter wires an Execer into a BatchInserter. A non-positive
// chunkSize falls back to DefaultChunkSize.
func NewBatchInserter(db Execer, chunkSize int, logger zerolog.Logger) *BatchInserter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &BatchInserter{
		db:        db,
		chunkSize: chunkSize,
		logger:    logger.With().Str("component", "batch_inserter").Logger(),
	}
}

// Insert submits rows in fixed-size chunks and returns the count of rows
// actually affected. Conflict suppression can make the count smaller than
// len(rows); callers must not assume equality. An empty input performs zero
// round trips.
func (b *BatchInserter) Insert(ctx context.Context, stmt InsertStatement, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if b.db == nil {
		return 0, ErrNotConfigured
	}

	var affected int64
	total := (len(rows) + b.chunkSize - 1) / b.chunkSize

	for start, chunkNum := 0, 1; start < len(rows); start, chunkNum = start+b.chunkSize, chunkNum+1 {
		if err := ctx.Err(); err != nil {
			return affected, err
		}

		end := start + b.chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		sql, err := stmt.SQL(len(chunk))
		if err != nil {
			return affected, err
		}

		args := make([]any, 0, len(chunk)*len(stmt.Columns))
		for _, row := range chunk {
			if len(row) != len(stmt.Columns) {
				return affected, fmt.Errorf("insert %s: row has %d values, want %d", stmt.Table, len(row), len(stmt.Columns))
			}
			args = append(args, row...)
		}

		tag, execErr := b.db.Exec(ctx, sql, args...)
		if execErr != nil {
			b.logger.Error().Err(execErr).
				Str("table", stmt.Table).
				Int("chunk", chunkNum).
				Int("chunks", total).
				Int("rows", len(chunk)).
				Msg("chunk insert failed; continuing with next chunk")
			continue
		}

		affected += tag.RowsAffected()
		b.logger.Debug().
			Str("table", stmt.Table).
			Int("chunk", chunkNum).
			Int("chunks", total).
			Int64("affected", tag.RowsAffected()).
			Msg("chunk inserted")
	}

	return affected, nil
}

var _ RowInserter = (*BatchInserter)(nil)
