package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dcpkit/internal/config"
	"dcpkit/internal/convert"
	"dcpkit/internal/encoder"
	"dcpkit/internal/fileutil"
	"dcpkit/internal/journal"
	"dcpkit/internal/logging"
	"dcpkit/internal/preflight"
	"dcpkit/internal/sequence"
)

type j2kOptions struct {
	start     int
	end       int
	workers   int
	overwrite string
	resume    bool
}

type j2kSummary struct {
	runID       string
	result      convert.Result
	outputBytes int64
	upToDate    bool
}

func newJ2KCommand(ctx *commandContext) *cobra.Command {
	var opts j2kOptions

	cmd := &cobra.Command{
		Use:   "j2k <input> <output>",
		Short: "Compress an image sequence into JPEG2000 codestreams",
		Long: "Compress every image in <input> (a directory or a single file) into a\n" +
			"JPEG2000 codestream under <output> using the configured encoder.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			summary, runErr := runJ2K(runCtx, cfg, logger, args[0], args[1], opts, cmd.ErrOrStderr())
			if summary != nil {
				out := cmd.OutOrStdout()
				if summary.upToDate {
					fmt.Fprintf(out, "Run %s already finished every frame; nothing to resume\n", summary.runID)
				} else {
					fmt.Fprintln(out, renderJ2KSummary(summary))
				}
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&opts.start, "start", 0, "First frame to convert (1-based, default first)")
	cmd.Flags().IntVar(&opts.end, "end", 0, "Last frame to convert (inclusive, default last)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Concurrent frame workers (default conversion.workers)")
	cmd.Flags().StringVar(&opts.overwrite, "overwrite", "", "Overwrite policy: skip-if-exists or always-overwrite")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue the last journaled run into <output> from its first unfinished frame")
	return cmd
}

func runJ2K(ctx context.Context, cfg *config.Config, base *slog.Logger, input, output string, opts j2kOptions, progressOut io.Writer) (*j2kSummary, error) {
	logger := logging.NewComponentLogger(base, "j2k")

	input, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	output, err = filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	outDir := output
	if !fileutil.IsDir(input) {
		outDir = filepath.Dir(output)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	kind := sequence.Image.WithExtensions(cfg.Conversion.ImageExtensions)
	files, err := sequence.BuildFileList(input, output, kind)
	if err != nil {
		return nil, err
	}
	sequence.Check(files.Inputs()).LogWarnings(logger, kind)

	if err := preflight.Failed(preflight.RunConversion(cfg, outDir)); err != nil {
		return nil, err
	}

	lock, err := fileutil.LockDir(outDir)
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return nil, fmt.Errorf("another dcpkit run is writing to %s: %w", outDir, err)
		}
		return nil, err
	}
	defer lock.Unlock()

	rate, err := editRate(cfg, "")
	if err != nil {
		return nil, err
	}

	overwriteValue := cfg.Conversion.Overwrite
	if strings.TrimSpace(opts.overwrite) != "" {
		overwriteValue = opts.overwrite
	}
	policy, err := convert.ParseOverwritePolicy(overwriteValue)
	if err != nil {
		return nil, err
	}

	workers := opts.workers
	if workers <= 0 {
		workers = cfg.WorkerCount()
	}

	store, err := journal.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	rng := convert.RangeFor(files, opts.start, opts.end, rate)
	if opts.resume {
		last, err := store.LastRun(ctx, outDir)
		if err != nil {
			if errors.Is(err, journal.ErrNotFound) {
				return nil, fmt.Errorf("no journaled run writes to %s; run without --resume first", outDir)
			}
			return nil, err
		}
		next, err := store.ResumeStart(ctx, last.ID)
		if err != nil {
			return nil, err
		}
		if next > last.End {
			return &j2kSummary{runID: last.ID, upToDate: true}, nil
		}
		logger.Info("resuming run",
			logging.String("previous_run", last.ID),
			logging.Int("resume_frame", next),
			logging.Int("end_frame", last.End),
		)
		rng.Start = next
		if opts.end == 0 {
			rng.End = last.End
		}
	}

	run, err := store.BeginRun(ctx, journal.RunSpec{
		Kind:      journal.KindJ2K,
		Input:     input,
		Output:    outDir,
		Range:     rng,
		Workers:   workers,
		Overwrite: policy,
	})
	if err != nil {
		return nil, fmt.Errorf("journal run: %w", err)
	}

	recorder := journal.NewRecorder(ctx, store, run.ID, base)
	progress := newFrameProgress(progressOut, rng.Len(), logger)
	enc := encoder.FromConfig(cfg, base)
	scheduler := convert.NewScheduler(base)

	result, runErr := scheduler.Run(ctx, convert.Job{
		RunID:     run.ID,
		Files:     files,
		Range:     rng,
		Workers:   workers,
		Overwrite: policy,
		Compress:  enc.Compress,
		Observer:  convert.Observers(recorder, progress),
	})
	progress.finish()

	if err := store.FinishRun(context.WithoutCancel(ctx), run.ID, result); err != nil {
		logging.WarnWithContext(logger, "journal finish failed", "journal_write_failed",
			logging.RunID(run.ID),
			logging.Error(err),
		)
	}

	summary := &j2kSummary{runID: run.ID, result: result}
	for frame := rng.Start; frame <= rng.End && frame <= files.Len(); frame++ {
		if entry, ok := files.Frame(frame); ok {
			summary.outputBytes += fileutil.Size(entry.Output)
		}
	}
	return summary, runErr
}

func renderJ2KSummary(s *j2kSummary) string {
	res := s.result
	failed := "-"
	if res.Failed != nil {
		if res.Failed.Frame > 0 {
			failed = fmt.Sprintf("%d (%s)", res.Failed.Frame, filepath.Base(res.Failed.Input))
		} else {
			failed = "interrupted"
		}
	}
	return renderPairs([][2]string{
		{"Run", s.runID},
		{"State", res.State.String()},
		{"Range", res.Range.String()},
		{"Frames", strconv.Itoa(res.Range.Len())},
		{"Completed", strconv.Itoa(res.Completed)},
		{"Skipped", strconv.Itoa(res.Skipped)},
		{"Failed frame", failed},
		{"Output size", humanize.Bytes(uint64(max(s.outputBytes, 0)))},
		{"Elapsed", res.Elapsed.Round(10 * time.Millisecond).String()},
	})
}
