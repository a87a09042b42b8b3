package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dcpkit/internal/convert"
)

// RecordFrame stores one frame outcome, replacing any earlier row for the
// same frame of the run.
func (s *Store) RecordFrame(ctx context.Context, runID string, rec FrameRecord) error {
	var errorMessage any
	if rec.Err != nil {
		errorMessage = rec.Err.Error()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO frames (
            run_id, frame, input_path, output_path, outcome,
            error_message, elapsed_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		rec.Frame,
		rec.Input,
		rec.Output,
		rec.Outcome.String(),
		errorMessage,
		rec.Elapsed.Milliseconds(),
		nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("record frame %d: %w", rec.Frame, err)
	}
	return nil
}

// Frames returns the recorded outcomes of runID in frame order.
func (s *Store) Frames(ctx context.Context, runID string) ([]FrameRow, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT frame, input_path, output_path, outcome, error_message, elapsed_ms, recorded_at
        FROM frames WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var out []FrameRow
	for rows.Next() {
		var (
			row          FrameRow
			errorMessage sql.NullString
			elapsedMS    int64
			recordedRaw  string
		)
		if err := rows.Scan(&row.Frame, &row.Input, &row.Output, &row.Outcome, &errorMessage, &elapsedMS, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		row.ErrorMessage = errorMessage.String
		row.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		row.RecordedAt = parseStamp(recordedRaw)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frames: %w", err)
	}
	return out, nil
}

// ResumeStart returns the first frame of runID's range that was not recorded
// as done or skipped. A value past the run's end means every frame finished.
func (s *Store) ResumeStart(ctx context.Context, runID string) (int, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return 0, err
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT frame FROM frames
        WHERE run_id = ? AND outcome IN (?, ?) AND frame >= ? AND frame <= ?
        ORDER BY frame`,
		runID, convert.FrameDone.String(), convert.FrameSkipped.String(), run.Start, run.End)
	if err != nil {
		return 0, fmt.Errorf("resume start: %w", err)
	}
	defer rows.Close()

	next := run.Start
	for rows.Next() {
		var frame int
		if err := rows.Scan(&frame); err != nil {
			return 0, fmt.Errorf("scan frame: %w", err)
		}
		if frame != next {
			break
		}
		next++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate frames: %w", err)
	}
	return next, nil
}
