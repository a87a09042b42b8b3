package journal

import (
	"time"

	"dcpkit/internal/convert"
)

// Run kinds recorded by the CLI.
const (
	KindJ2K   = "j2k"
	KindAudio = "audio"
)

// StateRunning marks a run that has begun but not finished. Finished runs
// carry the scheduler's terminal state name.
const StateRunning = "running"

// RunSpec describes a run about to start.
type RunSpec struct {
	Kind      string
	Input     string
	Output    string
	Range     convert.FrameRange
	Workers   int
	Overwrite convert.OverwritePolicy
}

// Run is one journal row.
type Run struct {
	ID           string
	Kind         string
	Input        string
	Output       string
	Start        int
	End          int
	EditRate     string
	Workers      int
	Overwrite    string
	State        string
	Completed    int
	Skipped      int
	FailedFrame  int
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	Elapsed      time.Duration
}

// Finished reports whether FinishRun has been recorded for the run.
func (r *Run) Finished() bool {
	return r != nil && r.State != StateRunning
}

// Frames returns the number of frames the run covers.
func (r *Run) Frames() int {
	if r == nil || r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// FrameRecord is the outcome of one frame.
type FrameRecord struct {
	Frame   int
	Input   string
	Output  string
	Outcome convert.Outcome
	Err     error
	Elapsed time.Duration
}

// FrameRow is a stored frame outcome.
type FrameRow struct {
	Frame        int
	Input        string
	Output       string
	Outcome      string
	ErrorMessage string
	Elapsed      time.Duration
	RecordedAt   time.Time
}
