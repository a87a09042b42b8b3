package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"dcpkit/internal/audio"
	"dcpkit/internal/fileutil"
	"dcpkit/internal/logging"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
)

// ErrBusy is returned when Run is called while another run is in progress.
var ErrBusy = errors.New("scheduler is already running")

// Scheduler executes conversion jobs. A Scheduler runs one job at a time but
// may be reused once a run finishes.
type Scheduler struct {
	logger   *slog.Logger
	state    atomic.Int32
	progress atomic.Int64
}

// NewScheduler constructs a scheduler that logs through logger.
func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{logger: logging.NewComponentLogger(logger, "convert")}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Progress returns the number of frames finished successfully in the current
// or most recent run. Reads are not synchronized with workers.
func (s *Scheduler) Progress() int64 { return s.progress.Load() }

// run holds the state shared by the workers of one Run call.
type run struct {
	job       Job
	logger    *slog.Logger
	progress  *atomic.Int64
	skipped   atomic.Int64
	failure   atomic.Pointer[FrameFailure]
	cancelRun context.CancelFunc
}

// Run validates job and converts its frame range, blocking until every
// dispatched frame has finished. Validation failures are returned before any
// frame is touched. An aborted run returns both the Result and its error.
func (s *Scheduler) Run(ctx context.Context, job Job) (Result, error) {
	if !s.begin() {
		return Result{State: s.State(), Range: job.Range}, ErrBusy
	}
	started := time.Now()
	s.progress.Store(0)

	if err := validateJob(job); err != nil {
		s.state.Store(int32(StateAborted))
		return Result{State: StateAborted, Range: job.Range, Elapsed: time.Since(started)}, err
	}

	workers := job.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, job.Range.Len())

	ctx = services.WithRunID(ctx, job.RunID)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		job:       job,
		logger:    logging.WithContext(ctx, s.logger),
		progress:  &s.progress,
		cancelRun: cancel,
	}
	s.state.Store(int32(StateRunning))
	r.logger.Info("conversion started",
		logging.String("range", job.Range.String()),
		logging.Int("frames", job.Range.Len()),
		logging.Int("workers", workers),
		logging.String("overwrite", job.Overwrite.String()),
	)

	frames := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for frame := range frames {
				if r.shouldSkip(ctx, frame) {
					continue
				}
				r.processFrame(runCtx, frame)
			}
		})
	}

dispatch:
	for frame := job.Range.Start; frame <= job.Range.End; frame++ {
		if runCtx.Err() != nil {
			break
		}
		select {
		case <-runCtx.Done():
			break dispatch
		case frames <- frame:
		}
	}
	close(frames)
	wg.Wait()

	result := Result{
		Range:     job.Range,
		Completed: int(s.progress.Load()),
		Skipped:   int(r.skipped.Load()),
		Elapsed:   time.Since(started),
	}
	switch failure := r.failure.Load(); {
	case failure != nil:
		result.State = StateAborted
		result.Failed = failure
	case result.Completed < job.Range.Len():
		result.State = StateAborted
		result.Failed = &FrameFailure{
			Err: services.Wrap(services.ErrConversion, "convert", "run", "interrupted", context.Cause(ctx)),
		}
	default:
		result.State = StateCompleted
	}
	s.state.Store(int32(result.State))

	attrs := []logging.Attr{
		logging.String("state", result.State.String()),
		logging.Int("completed", result.Completed),
		logging.Int("skipped", result.Skipped),
		logging.Duration("elapsed", result.Elapsed),
	}
	if result.Failed != nil {
		attrs = append(attrs, logging.Int("failed_frame", result.Failed.Frame))
		attrs = append(attrs, logging.Failure(result.Failed.Err)...)
		logging.ErrorWithContext(r.logger, "conversion aborted", "run_aborted", attrs...)
		return result, result.Err()
	}
	r.logger.Info("conversion completed", logging.Args(attrs...)...)
	return result, nil
}

func (s *Scheduler) begin() bool {
	for {
		current := s.state.Load()
		if State(current) == StateValidating || State(current) == StateRunning {
			return false
		}
		if s.state.CompareAndSwap(current, int32(StateValidating)) {
			return true
		}
	}
}

func validateJob(job Job) error {
	if job.Files == nil {
		return services.Wrap(services.ErrValidation, "convert", "validate", "file list is required", nil)
	}
	if job.Compress == nil {
		return services.Wrap(services.ErrValidation, "convert", "validate", "compress function is required", nil)
	}
	switch job.Overwrite {
	case SkipIfExists, AlwaysOverwrite:
	default:
		return services.Wrap(services.ErrValidation, "convert", "validate", fmt.Sprintf("unknown overwrite policy %d", int(job.Overwrite)), nil)
	}
	return job.Range.Validate(job.Files.Len())
}

// record keeps the lowest-indexed failure. The first failure in time cancels
// the run; frames below it that fail afterwards take its place.
func (r *run) record(failure *FrameFailure) {
	for {
		current := r.failure.Load()
		if current != nil && current.Frame <= failure.Frame {
			return
		}
		if r.failure.CompareAndSwap(current, failure) {
			if current == nil {
				r.cancelRun()
			}
			return
		}
	}
}

// shouldSkip drops a handed-off frame when the caller interrupted the run or
// a lower frame already failed. Frames below a failure are always finished.
func (r *run) shouldSkip(parent context.Context, frame int) bool {
	if parent.Err() != nil {
		return true
	}
	if failure := r.failure.Load(); failure != nil && frame > failure.Frame {
		return true
	}
	return false
}

func (r *run) processFrame(runCtx context.Context, frame int) {
	entry, _ := r.job.Files.Frame(frame)
	frameCtx := services.WithFrame(runCtx, frame)
	logger := logging.WithContext(frameCtx, r.logger)
	started := time.Now()
	event := FrameEvent{Frame: frame, Input: entry.Input, Output: entry.Output}

	defer func() {
		event.Elapsed = time.Since(started)
		if r.job.Observer != nil {
			r.job.Observer.FrameFinished(event)
		}
	}()

	if r.job.Overwrite == SkipIfExists {
		exists, err := fileutil.Exists(entry.Output)
		if err != nil {
			r.fail(logger, &event, services.Wrap(services.ErrConversion, "convert", "stat output", entry.Output, err))
			return
		}
		if exists {
			event.Outcome = FrameSkipped
			r.skipped.Add(1)
			r.progress.Add(1)
			logger.Debug("frame output exists, skipping", logging.String("output", entry.Output))
			return
		}
	}

	// In-flight frames run to completion even after the run is cancelled.
	if err := r.job.Compress(context.WithoutCancel(frameCtx), entry.Input, entry.Output); err != nil {
		r.fail(logger, &event, services.Wrap(services.ErrConversion, "convert", "compress",
			fmt.Sprintf("frame %d", frame), err))
		return
	}
	event.Outcome = FrameDone
	r.progress.Add(1)
	logger.Debug("frame converted", logging.String("output", entry.Output))
}

func (r *run) fail(logger *slog.Logger, event *FrameEvent, err error) {
	event.Outcome = FrameFailed
	event.Err = err
	r.record(&FrameFailure{Frame: event.Frame, Input: event.Input, Output: event.Output, Err: err})
	attrs := []logging.Attr{
		logging.String("input", event.Input),
		logging.String(logging.FieldErrorHint, "inspect the input frame and encoder output, then resume the run"),
	}
	logging.ErrorWithContext(logger, "frame failed", "frame_failed", append(attrs, logging.Failure(err)...)...)
}

// RangeFor builds a range over files where a zero start or end means the
// first or last frame respectively.
func RangeFor(files *sequence.FileList, start, end int, rate audio.EditRate) FrameRange {
	r := FrameRange{Start: start, End: end, Rate: rate}
	if r.Start == 0 {
		r.Start = 1
	}
	if r.End == 0 {
		r.End = files.Len()
	}
	return r
}
