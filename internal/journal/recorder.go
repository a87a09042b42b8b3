package journal

import (
	"context"
	"log/slog"
	"sync"

	"dcpkit/internal/convert"
	"dcpkit/internal/logging"
)

// Recorder writes scheduler frame events into the journal. It is safe for
// concurrent use by scheduler workers.
type Recorder struct {
	store  *Store
	runID  string
	ctx    context.Context
	logger *slog.Logger

	mu  sync.Mutex
	err error
}

// NewRecorder returns an Observer bound to runID. Writes outlive cancellation
// of ctx so frames that finish after an interrupt are still recorded.
func NewRecorder(ctx context.Context, store *Store, runID string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		runID:  runID,
		ctx:    context.WithoutCancel(ensureContext(ctx)),
		logger: logging.NewComponentLogger(logger, "journal"),
	}
}

// FrameFinished implements convert.Observer.
func (r *Recorder) FrameFinished(ev convert.FrameEvent) {
	err := r.store.RecordFrame(r.ctx, r.runID, FrameRecord{
		Frame:   ev.Frame,
		Input:   ev.Input,
		Output:  ev.Output,
		Outcome: ev.Outcome,
		Err:     ev.Err,
		Elapsed: ev.Elapsed,
	})
	if err == nil {
		return
	}
	r.mu.Lock()
	first := r.err == nil
	if first {
		r.err = err
	}
	r.mu.Unlock()
	if first {
		logging.WarnWithContext(r.logger, "journal write failed", "journal_write_failed",
			logging.RunID(r.runID),
			logging.Frame(ev.Frame),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "resume may repeat frames that already finished"),
		)
	}
}

// Err returns the first write failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
