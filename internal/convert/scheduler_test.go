package convert_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"dcpkit/internal/audio"
	"dcpkit/internal/convert"
	"dcpkit/internal/logging"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
	"dcpkit/internal/testsupport"
)

func buildFrames(t *testing.T, count int) (*sequence.FileList, string) {
	t.Helper()
	in := filepath.Join(t.TempDir(), "tiff")
	out := filepath.Join(t.TempDir(), "j2c")
	testsupport.WriteSequence(t, in, "frame_", ".tif", count)
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	files, err := sequence.BuildFileList(in, out, sequence.Image)
	if err != nil {
		t.Fatalf("BuildFileList: %v", err)
	}
	return files, out
}

func copyCompress(_ context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	return os.WriteFile(output, data, 0o644)
}

type recorder struct {
	mu     sync.Mutex
	events map[int]convert.FrameEvent
}

func newRecorder() *recorder {
	return &recorder{events: make(map[int]convert.FrameEvent)}
}

func (r *recorder) FrameFinished(ev convert.FrameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[ev.Frame] = ev
}

func (r *recorder) outcome(frame int) (convert.Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[frame]
	return ev.Outcome, ok
}

func outputExists(t *testing.T, files *sequence.FileList, frame int) bool {
	t.Helper()
	entry, ok := files.Frame(frame)
	if !ok {
		t.Fatalf("frame %d out of range", frame)
	}
	_, err := os.Stat(entry.Output)
	return err == nil
}

func TestRunCompletesAllFrames(t *testing.T) {
	files, _ := buildFrames(t, 10)
	obs := newRecorder()
	var (
		mu     sync.Mutex
		frames []int
	)
	compress := func(ctx context.Context, input, output string) error {
		frame, ok := services.FrameFromContext(ctx)
		if !ok {
			return errors.New("frame missing from context")
		}
		if want := fmt.Sprintf("frame_%03d.tif", frame); filepath.Base(input) != want {
			return fmt.Errorf("frame %d got input %s", frame, input)
		}
		mu.Lock()
		frames = append(frames, frame)
		mu.Unlock()
		return copyCompress(ctx, input, output)
	}

	sched := convert.NewScheduler(logging.NewNop())
	if sched.State() != convert.StateIdle {
		t.Fatalf("expected idle scheduler, got %s", sched.State())
	}
	result, err := sched.Run(context.Background(), convert.Job{
		RunID:    "run-1",
		Files:    files,
		Range:    convert.FullRange(files, audio.Rate24),
		Workers:  4,
		Compress: compress,
		Observer: obs,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.State != convert.StateCompleted || sched.State() != convert.StateCompleted {
		t.Fatalf("expected completed, got %s / %s", result.State, sched.State())
	}
	if result.Completed != 10 || result.Skipped != 0 || sched.Progress() != 10 {
		t.Fatalf("unexpected counts %+v progress %d", result, sched.Progress())
	}
	if result.Err() != nil {
		t.Fatalf("unexpected result error %v", result.Err())
	}
	if len(frames) != 10 {
		t.Fatalf("expected 10 compress calls, got %d", len(frames))
	}
	for frame := 1; frame <= 10; frame++ {
		if !outputExists(t, files, frame) {
			t.Fatalf("missing output for frame %d", frame)
		}
		if outcome, ok := obs.outcome(frame); !ok || outcome != convert.FrameDone {
			t.Fatalf("frame %d outcome = %v, %v", frame, outcome, ok)
		}
	}
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	files, _ := buildFrames(t, 10)
	boom := errors.New("encoder exited 1")
	compress := func(ctx context.Context, input, output string) error {
		if strings.HasSuffix(input, "frame_006.tif") {
			return boom
		}
		return copyCompress(ctx, input, output)
	}

	result, err := convert.NewScheduler(nil).Run(context.Background(), convert.Job{
		Files:    files,
		Range:    convert.FullRange(files, audio.Rate24),
		Workers:  2,
		Compress: compress,
	})
	if err == nil {
		t.Fatal("expected aborted run to return an error")
	}
	if result.State != convert.StateAborted {
		t.Fatalf("expected aborted, got %s", result.State)
	}
	if result.Failed == nil || result.Failed.Frame != 6 {
		t.Fatalf("expected failure at frame 6, got %+v", result.Failed)
	}
	if !strings.HasSuffix(result.Failed.Input, "frame_006.tif") {
		t.Fatalf("failure should name the input file, got %q", result.Failed.Input)
	}
	if !errors.Is(err, services.ErrConversion) || !errors.Is(err, boom) {
		t.Fatalf("expected conversion error wrapping the cause, got %v", err)
	}
	var failure *convert.FrameFailure
	if !errors.As(err, &failure) || failure.Frame != 6 {
		t.Fatalf("expected *FrameFailure for frame 6, got %v", err)
	}
	for frame := 1; frame <= 5; frame++ {
		if !outputExists(t, files, frame) {
			t.Fatalf("expected frame %d output to exist", frame)
		}
	}
	if outputExists(t, files, 6) {
		t.Fatal("failing frame must not produce output")
	}
	// Frames 7-10 may have been in flight when frame 6 failed.
}

func TestRunSkipsExistingOutputs(t *testing.T) {
	files, _ := buildFrames(t, 5)
	existing, _ := files.Frame(3)
	if err := os.WriteFile(existing.Output, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}

	var (
		mu    sync.Mutex
		calls = map[string]int{}
	)
	compress := func(ctx context.Context, input, output string) error {
		mu.Lock()
		calls[output]++
		mu.Unlock()
		return copyCompress(ctx, input, output)
	}
	obs := newRecorder()

	result, err := convert.NewScheduler(nil).Run(context.Background(), convert.Job{
		Files:     files,
		Range:     convert.FullRange(files, audio.Rate24),
		Workers:   2,
		Overwrite: convert.SkipIfExists,
		Compress:  compress,
		Observer:  obs,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls[existing.Output] != 0 {
		t.Fatal("existing frame must not be recompressed")
	}
	if result.Completed != 5 || result.Skipped != 1 {
		t.Fatalf("expected 5 completed with 1 skipped, got %+v", result)
	}
	if outcome, _ := obs.outcome(3); outcome != convert.FrameSkipped {
		t.Fatalf("frame 3 outcome = %s", outcome)
	}
	data, err := os.ReadFile(existing.Output)
	if err != nil || string(data) != "previous" {
		t.Fatalf("existing output was modified: %q, %v", data, err)
	}
}

func TestRunAlwaysOverwrite(t *testing.T) {
	files, _ := buildFrames(t, 3)
	existing, _ := files.Frame(2)
	if err := os.WriteFile(existing.Output, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := convert.NewScheduler(nil).Run(context.Background(), convert.Job{
		Files:     files,
		Range:     convert.FullRange(files, audio.Rate24),
		Workers:   1,
		Overwrite: convert.AlwaysOverwrite,
		Compress:  copyCompress,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Skipped != 0 || result.Completed != 3 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if data, _ := os.ReadFile(existing.Output); string(data) == "previous" {
		t.Fatal("expected existing output to be replaced")
	}
}

func TestRunProcessesOnlyTheRequestedRange(t *testing.T) {
	files, _ := buildFrames(t, 6)
	result, err := convert.NewScheduler(nil).Run(context.Background(), convert.Job{
		Files:    files,
		Range:    convert.RangeFor(files, 3, 4, audio.Rate24),
		Workers:  8,
		Compress: copyCompress,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Completed != 2 {
		t.Fatalf("expected 2 frames, got %d", result.Completed)
	}
	for frame := 1; frame <= 6; frame++ {
		want := frame == 3 || frame == 4
		if got := outputExists(t, files, frame); got != want {
			t.Fatalf("frame %d output exists = %v, want %v", frame, got, want)
		}
	}
}

func TestRunValidatesJob(t *testing.T) {
	files, _ := buildFrames(t, 4)
	called := false
	compress := func(context.Context, string, string) error {
		called = true
		return nil
	}
	tests := []struct {
		name string
		job  convert.Job
	}{
		{"start below one", convert.Job{Files: files, Range: convert.FrameRange{Start: 0, End: 2}, Compress: compress}},
		{"start after end", convert.Job{Files: files, Range: convert.FrameRange{Start: 3, End: 2}, Compress: compress}},
		{"end beyond list", convert.Job{Files: files, Range: convert.FrameRange{Start: 1, End: 5}, Compress: compress}},
		{"nil compress", convert.Job{Files: files, Range: convert.FrameRange{Start: 1, End: 4}}},
		{"nil files", convert.Job{Range: convert.FrameRange{Start: 1, End: 1}, Compress: compress}},
		{"bad policy", convert.Job{Files: files, Range: convert.FrameRange{Start: 1, End: 4}, Compress: compress, Overwrite: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := convert.NewScheduler(nil)
			result, err := sched.Run(context.Background(), tt.job)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if result.State != convert.StateAborted || sched.State() != convert.StateAborted {
				t.Fatalf("expected aborted state, got %s", result.State)
			}
		})
	}
	if called {
		t.Fatal("compress must not run for an invalid job")
	}
}

func TestRunInterruptedBeforeStart(t *testing.T) {
	files, _ := buildFrames(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := convert.NewScheduler(nil).Run(ctx, convert.Job{
		Files:    files,
		Range:    convert.FullRange(files, audio.Rate24),
		Workers:  2,
		Compress: copyCompress,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.State != convert.StateAborted || result.Failed == nil || result.Failed.Frame != 0 {
		t.Fatalf("expected abort at frame 0, got %+v", result)
	}
	if result.Completed != 0 {
		t.Fatalf("expected no frames, got %d", result.Completed)
	}
}

func TestRunInterruptLetsInFlightFrameFinish(t *testing.T) {
	files, _ := buildFrames(t, 6)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	compress := func(frameCtx context.Context, input, output string) error {
		if strings.HasSuffix(input, "frame_002.tif") {
			cancel()
			if frameCtx.Err() != nil {
				return errors.New("in-flight frame observed cancellation")
			}
		}
		return copyCompress(frameCtx, input, output)
	}

	result, err := convert.NewScheduler(nil).Run(ctx, convert.Job{
		Files:    files,
		Range:    convert.FullRange(files, audio.Rate24),
		Workers:  1,
		Compress: compress,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result.Failed == nil || result.Failed.Frame != 0 {
		t.Fatalf("expected interrupt failure, got %+v", result.Failed)
	}
	if result.Completed != 2 {
		t.Fatalf("expected frames 1 and 2 to finish, got %d", result.Completed)
	}
	for frame := 3; frame <= 6; frame++ {
		if outputExists(t, files, frame) {
			t.Fatalf("frame %d should not have been started", frame)
		}
	}
}

func TestRunRejectsConcurrentUse(t *testing.T) {
	files, _ := buildFrames(t, 2)
	sched := convert.NewScheduler(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	compress := func(ctx context.Context, input, output string) error {
		once.Do(func() { close(entered) })
		<-release
		return copyCompress(ctx, input, output)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sched.Run(context.Background(), convert.Job{
			Files:    files,
			Range:    convert.FullRange(files, audio.Rate24),
			Workers:  1,
			Compress: compress,
		})
		done <- err
	}()

	<-entered
	if sched.State() != convert.StateRunning {
		t.Fatalf("expected running state, got %s", sched.State())
	}
	if _, err := sched.Run(context.Background(), convert.Job{}); !errors.Is(err, convert.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestParseOverwritePolicy(t *testing.T) {
	tests := map[string]convert.OverwritePolicy{
		"":                 convert.SkipIfExists,
		"skip-if-exists":   convert.SkipIfExists,
		"Always-Overwrite": convert.AlwaysOverwrite,
	}
	for in, want := range tests {
		got, err := convert.ParseOverwritePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParseOverwritePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := convert.ParseOverwritePolicy("sometimes"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if convert.AlwaysOverwrite.String() != "always-overwrite" {
		t.Fatalf("unexpected String %q", convert.AlwaysOverwrite)
	}
}
