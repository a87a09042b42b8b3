package convert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dcpkit/internal/audio"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
)

// OverwritePolicy decides what happens when a frame's output already exists.
type OverwritePolicy int

const (
	// SkipIfExists leaves existing outputs alone and counts them as done.
	SkipIfExists OverwritePolicy = iota
	// AlwaysOverwrite recompresses every frame.
	AlwaysOverwrite
)

func (p OverwritePolicy) String() string {
	switch p {
	case SkipIfExists:
		return "skip-if-exists"
	case AlwaysOverwrite:
		return "always-overwrite"
	default:
		return fmt.Sprintf("overwrite(%d)", int(p))
	}
}

// ParseOverwritePolicy accepts the names produced by String.
func ParseOverwritePolicy(value string) (OverwritePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "skip-if-exists", "skip":
		return SkipIfExists, nil
	case "always-overwrite", "always", "overwrite":
		return AlwaysOverwrite, nil
	default:
		return 0, services.Wrap(services.ErrValidation, "convert", "overwrite policy", fmt.Sprintf("unsupported value %q", value), nil)
	}
}

// FrameRange selects the 1-based inclusive frames a run processes.
type FrameRange struct {
	Start int
	End   int
	Rate  audio.EditRate
}

// FullRange covers every entry of files.
func FullRange(files *sequence.FileList, rate audio.EditRate) FrameRange {
	return FrameRange{Start: 1, End: files.Len(), Rate: rate}
}

// Len returns the number of frames in the range, or zero if it is inverted.
func (r FrameRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Validate checks 1 <= Start <= End <= total.
func (r FrameRange) Validate(total int) error {
	switch {
	case r.Start < 1:
		return services.Wrap(services.ErrValidation, "convert", "validate range", fmt.Sprintf("start frame %d must be at least 1", r.Start), nil)
	case r.Start > r.End:
		return services.Wrap(services.ErrValidation, "convert", "validate range", fmt.Sprintf("start frame %d is after end frame %d", r.Start, r.End), nil)
	case r.End > total:
		return services.Wrap(services.ErrValidation, "convert", "validate range", fmt.Sprintf("end frame %d exceeds the %d available frames", r.End, total), nil)
	}
	return nil
}

func (r FrameRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// CompressFunc converts one input file into one output file.
type CompressFunc func(ctx context.Context, input, output string) error

// Outcome classifies how a single frame finished.
type Outcome int

const (
	FrameDone Outcome = iota
	FrameSkipped
	FrameFailed
)

func (o Outcome) String() string {
	switch o {
	case FrameDone:
		return "done"
	case FrameSkipped:
		return "skipped"
	case FrameFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FrameEvent reports one finished frame to an Observer.
type FrameEvent struct {
	Frame   int
	Input   string
	Output  string
	Outcome Outcome
	Err     error
	Elapsed time.Duration
}

// Observer receives frame events from worker goroutines, so implementations
// must be safe for concurrent use.
type Observer interface {
	FrameFinished(FrameEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameEvent)

func (f ObserverFunc) FrameFinished(ev FrameEvent) { f(ev) }

// Observers fans events out to several observers in order. Nil entries are
// ignored.
func Observers(observers ...Observer) Observer {
	return ObserverFunc(func(ev FrameEvent) {
		for _, o := range observers {
			if o != nil {
				o.FrameFinished(ev)
			}
		}
	})
}

// Job describes one conversion run.
type Job struct {
	// RunID tags log lines and journal rows; optional.
	RunID     string
	Files     *sequence.FileList
	Range     FrameRange
	Workers   int
	Overwrite OverwritePolicy
	Compress  CompressFunc
	Observer  Observer
}

// State is the scheduler lifecycle.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// FrameFailure identifies the frame that aborted a run. Frame is zero when
// the run was interrupted by the caller rather than by a frame.
type FrameFailure struct {
	Frame  int
	Input  string
	Output string
	Err    error
}

func (f *FrameFailure) Error() string {
	if f.Frame == 0 {
		return fmt.Sprintf("run interrupted: %v", f.Err)
	}
	return fmt.Sprintf("frame %d (%s -> %s): %v", f.Frame, f.Input, f.Output, f.Err)
}

func (f *FrameFailure) Unwrap() error { return f.Err }

// Result summarizes a finished run. Completed counts every frame that ended
// successfully, including Skipped ones.
type Result struct {
	State     State
	Range     FrameRange
	Completed int
	Skipped   int
	Failed    *FrameFailure
	Elapsed   time.Duration
}

// Err returns the failure that aborted the run, or nil.
func (r Result) Err() error {
	if r.Failed == nil {
		return nil
	}
	return r.Failed
}
