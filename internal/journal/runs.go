package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dcpkit/internal/convert"
	"dcpkit/internal/services"
	"dcpkit/internal/timestamp"
	"dcpkit/internal/uuidgen"
)

const runColumns = "id, kind, input_path, output_path, range_start, range_end, edit_rate, workers, overwrite, state, completed, skipped, failed_frame, error_kind, error_message, started_at, finished_at, elapsed_ms"

// BeginRun inserts a running row for spec and returns it with a fresh ID.
func (s *Store) BeginRun(ctx context.Context, spec RunSpec) (*Run, error) {
	if spec.Kind == "" {
		return nil, services.Wrap(services.ErrValidation, "journal", "begin run", "run kind is required", nil)
	}
	id, err := uuidgen.New()
	if err != nil {
		return nil, err
	}

	_, err = s.execWithRetry(ctx,
		`INSERT INTO runs (
            id, kind, input_path, output_path, range_start, range_end,
            edit_rate, workers, overwrite, state, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(),
		spec.Kind,
		spec.Input,
		spec.Output,
		spec.Range.Start,
		spec.Range.End,
		spec.Range.Rate.String(),
		spec.Workers,
		spec.Overwrite.String(),
		StateRunning,
		nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, id.String())
}

// FinishRun stores the scheduler's result for runID.
func (s *Store) FinishRun(ctx context.Context, runID string, result convert.Result) error {
	var (
		failedFrame  any
		errorKind    any
		errorMessage any
	)
	if result.Failed != nil {
		failedFrame = result.Failed.Frame
		errorKind = services.Kind(result.Failed.Err)
		errorMessage = result.Failed.Error()
	}

	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET
            state = ?, completed = ?, skipped = ?, failed_frame = ?,
            error_kind = ?, error_message = ?, finished_at = ?, elapsed_ms = ?
        WHERE id = ?`,
		result.State.String(),
		result.Completed,
		result.Skipped,
		failedFrame,
		errorKind,
		errorMessage,
		nowStamp(),
		result.Elapsed.Milliseconds(),
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+runColumns+" FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LastRun returns the newest run that wrote into outputDir.
func (s *Store) LastRun(ctx context.Context, outputDir string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+runColumns+" FROM runs WHERE output_path = ? ORDER BY rowid DESC LIMIT 1", outputDir)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last run for %s: %w", outputDir, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("last run: %w", err)
	}
	return run, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		failedFrame  sql.NullInt64
		errorKind    sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
		elapsedMS    int64
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Kind,
		&run.Input,
		&run.Output,
		&run.Start,
		&run.End,
		&run.EditRate,
		&run.Workers,
		&run.Overwrite,
		&run.State,
		&run.Completed,
		&run.Skipped,
		&failedFrame,
		&errorKind,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
		&elapsedMS,
	); err != nil {
		return nil, err
	}
	run.FailedFrame = int(failedFrame.Int64)
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	run.StartedAt = parseStamp(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseStamp(finishedRaw.String)
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &run, nil
}

func nowStamp() string {
	return timestamp.Now().String()
}

func parseStamp(raw string) time.Time {
	ts, err := timestamp.Parse(raw)
	if err != nil {
		return time.Time{}
	}
	return ts.Time()
}
