package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"price-loader/internal/storage"
)

// Options configure one ingestion pass.
type Options struct {
	DataDir        string
	CheckpointName string
}

// FileResult records the outcome of a single file. A non-nil Err means the
// file was skipped or partially processed; the pass itself continues.
type FileResult struct {
	Path      string
	Parsed    int
	Kept      int
	Inserted  int64
	Watermark *time.Time
	Err       error
}

// Summary aggregates the per-file results of one pass.
type Summary struct {
	Files    int
	Failed   int
	Inserted int64
	Results  []FileResult
}

// Orchestrator drives the incremental per-file ingestion loop.
type Orchestrator struct {
	opts        Options
	checkpoints storage.CheckpointStore
	inserter    storage.RowInserter
	logger      zerolog.Logger
}

// NewOrchestrator wires checkpoint storage and a row inserter into an
// ingestion pass.
func NewOrchestrator(opts Options, checkpoints storage.CheckpointStore, inserter storage.RowInserter, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		opts:        opts,
		checkpoints: checkpoints,
		inserter:    inserter,
		logger:      logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Run processes every CSV file in the data directory in natural order. One
// bad file never halts the pass; its error lands in the summary and the loop
// moves on. Only context cancellation aborts early.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	paths := ListCSVFiles(o.opts.DataDir, o.logger)
	o.logger.Info().Int("files", len(paths)).Str("dir", o.opts.DataDir).Msg("starting ingestion pass")

	summary := Summary{Results: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := o.processFile(ctx, path)

		summary.Files++
		summary.Inserted += result.Inserted
		if result.Err != nil {
			summary.Failed++
			o.logger.Error().Err(result.Err).Str("file", path).Msg("file failed; continuing with next file")
		}
		summary.Results = append(summary.Results, result)
	}

	o.logger.Info().
		Int("files", summary.Files).
		Int("failed", summary.Failed).
		Int64("inserted", summary.Inserted).
		Msg("ingestion pass completed")
	return summary, nil
}

// processFile runs the checkpoint-read, parse, filter, insert, advance
// sequence for one file. The checkpoint is re-read for every file: advancing
// it after file N must affect the filter on file N+1, and a single file can
// itself straddle the checkpoint boundary on a resumed run.
func (o *Orchestrator) processFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}

	checkpoint, err := o.checkpoints.GetLatestCheckpoint(ctx, o.opts.CheckpointName)
	if err != nil {
		result.Err = fmt.Errorf("read checkpoint: %w", err)
		return result
	}
	if checkpoint != nil {
		o.logger.Info().Str("file", path).Time("checkpoint", *checkpoint).Msg("processing file")
	} else {
		o.logger.Info().Str("file", path).Msg("processing file with no checkpoint")
	}

	records, err := ReadPriceRecords(path)
	if err != nil {
		result.Err = fmt.Errorf("parse file: %w", err)
		return result
	}
	result.Parsed = len(records)

	kept := FilterAfter(records, checkpoint)
	result.Kept = len(kept)
	o.logger.Info().
		Str("file", path).
		Int("parsed", result.Parsed).
		Int("filtered_out", result.Parsed-result.Kept).
		Int("kept", result.Kept).
		Msg("file parsed")

	if len(kept) == 0 {
		return result
	}

	rows := make([][]any, len(kept))
	watermark := kept[0].SystemTimestamp
	for i, rec := range kept {
		rows[i] = storage.PriceRow(rec)
		if rec.SystemTimestamp.After(watermark) {
			watermark = rec.SystemTimestamp
		}
	}

	inserted, err := o.inserter.Insert(ctx, storage.ItemPricesInsert(), rows)
	result.Inserted = inserted
	if err != nil {
		result.Err = fmt.Errorf("insert rows: %w", err)
		return result
	}
	if inserted < int64(len(kept)) {
		o.logger.Warn().
			Str("file", path).
			Int("kept", len(kept)).
			Int64("inserted", inserted).
			Msg("some rows were already present or failed; duplicates still advance the watermark")
	}

	// The watermark covers every filtered input row, not only inserted
	// ones: a duplicate still represents an already-seen timestamp, and the
	// checkpoint must be able to move past it.
	if err := o.checkpoints.AdvanceCheckpoint(ctx, o.opts.CheckpointName, watermark); err != nil {
		result.Err = fmt.Errorf("advance checkpoint: %w", err)
		return result
	}
	result.Watermark = &watermark
	o.logger.Info().Str("file", path).Time("watermark", watermark).Msg("checkpoint advanced")

	return result
}
