package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Ingestion Run Methods
// -----------------------------------------------------------------------------

// SaveRun records the final statistics of an ingestion run. Saving the same
// run id again overwrites the earlier row.
func (db *DB) SaveRun(ctx context.Context, run Run) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO ingestion_runs (id, source, dry_run, state, fetched, processed, saved, skipped, errored, error_message, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state, fetched = EXCLUDED.fetched, processed = EXCLUDED.processed,
			saved = EXCLUDED.saved, skipped = EXCLUDED.skipped, errored = EXCLUDED.errored,
			error_message = EXCLUDED.error_message, ended_at = EXCLUDED.ended_at`,
		run.ID, run.Source, run.DryRun, run.State,
		run.Fetched, run.Processed, run.Saved, run.Skipped, run.Errored,
		run.ErrorMessage, run.StartedAt, run.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves an ingestion run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, source, dry_run, state, fetched, processed, saved, skipped, errored, error_message, started_at, ended_at
		 FROM ingestion_runs WHERE id = $1`,
		runID,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent ingestion runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, source, dry_run, state, fetched, processed, saved, skipped, errored, error_message, started_at, ended_at
		 FROM ingestion_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.Source, &run.DryRun, &run.State,
		&run.Fetched, &run.Processed, &run.Saved, &run.Skipped, &run.Errored,
		&run.ErrorMessage, &run.StartedAt, &run.EndedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
