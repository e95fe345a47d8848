package storage

import (
	"context"
	"fmt"
	"time"
)

const (
	getCheckpointSQL = `SELECT last_processed_timestamp
    FROM processing_checkpoints
    WHERE checkpoint_name = $1;`

	advanceCheckpointSQL = `INSERT INTO processing_checkpoints (
        checkpoint_name,
        last_processed_timestamp,
        updated_at
    ) VALUES (
        $1, $2, CURRENT_TIMESTAMP
    )
    ON CONFLICT (checkpoint_name) DO UPDATE
    SET last_processed_timestamp = EXCLUDED.last_processed_timestamp,
        updated_at               = CURRENT_TIMESTAMP;`
)

// GetLatestCheckpoint returns the persisted timestamp for the checkpoint
// name, or nil if the checkpoint has never been set.
func (s *Store) GetLatestCheckpoint(ctx context.Context, name string) (*time.Time, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, getCheckpointSQL, name)
	if queryErr != nil {
		return nil, fmt.Errorf("get checkpoint %q: %w", name, queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var ts *time.Time
	if scanErr := rows.Scan(&ts); scanErr != nil {
		return nil, fmt.Errorf("scan checkpoint %q: %w", name, scanErr)
	}
	return ts, rows.Err()
}

// AdvanceCheckpoint upserts the checkpoint row with the given timestamp.
// The write is an unconditional overwrite: callers must only pass a
// timestamp greater than the one they read, which holds under the
// single-writer model. Concurrent writers could regress progress here.
func (s *Store) AdvanceCheckpoint(ctx context.Context, name string, ts time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	if _, execErr := pool.Exec(ctx, advanceCheckpointSQL, name, ts); execErr != nil {
		return fmt.Errorf("advance checkpoint %q: %w", name, execErr)
	}
	return nil
}

var _ CheckpointStore = (*Store)(nil)
