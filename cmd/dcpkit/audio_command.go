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
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dcpkit/internal/audio"
	"dcpkit/internal/config"
	"dcpkit/internal/convert"
	"dcpkit/internal/fileutil"
	"dcpkit/internal/journal"
	"dcpkit/internal/logging"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
)

type audioSummary struct {
	runID  string
	desc   audio.Descriptor
	inputs int
	frames int64
	bytes  int64
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var rateFlag string

	cmd := &cobra.Command{
		Use:   "audio <output> <input...>",
		Short: "Interleave WAV files into one PCM stream",
		Long: "Interleave the channels of every input WAV file, in argument order, into a\n" +
			"single raw PCM stream at <output>. A single directory input expands to its\n" +
			"sorted WAV files.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}
			rate, err := editRate(cfg, rateFlag)
			if err != nil {
				return err
			}
			runCtx, stop := signalContext(cmd.Context())
			defer stop()

			summary, err := runAudio(runCtx, cfg, logger, args[0], args[1:], rate)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderAudioSummary(summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&rateFlag, "rate", "", "Edit rate as num/den (default conversion.frame_rate)")
	return cmd
}

func runAudio(ctx context.Context, cfg *config.Config, base *slog.Logger, output string, inputs []string, rate audio.EditRate) (*audioSummary, error) {
	logger := logging.NewComponentLogger(base, "audio")

	output, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}
	if fileutil.IsDir(output) {
		return nil, services.Wrap(services.ErrValidation, "cli", "audio", fmt.Sprintf("output %s is a directory", output), nil)
	}
	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	kind := sequence.Audio.WithExtensions(cfg.Audio.Extensions)
	mux, err := audio.Open(inputs, rate, audio.WithKind(kind), audio.WithLogger(base))
	if err != nil {
		return nil, err
	}
	defer mux.Close()

	lock, err := fileutil.LockDir(outDir)
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	store, err := journal.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	desc := mux.Descriptor()
	rng := convert.FrameRange{Start: 1, End: int(desc.Duration), Rate: rate}
	run, err := store.BeginRun(ctx, journal.RunSpec{
		Kind:   journal.KindAudio,
		Input:  inputs[0],
		Output: outDir,
		Range:  rng,
		// The multiplexer reads on the calling goroutine.
		Workers:   1,
		Overwrite: convert.AlwaysOverwrite,
	})
	if err != nil {
		return nil, fmt.Errorf("journal run: %w", err)
	}

	logger.Info("audio multiplex started",
		logging.RunID(run.ID),
		logging.Int("inputs", mux.Readers()),
		logging.Int("channels", desc.ChannelCount),
		logging.Int64("frames", desc.Duration),
	)

	started := time.Now()
	var frames int64
	writeErr := fileutil.WriteStream(output, 0o644, func(w io.Writer) error {
		var err error
		frames, err = audio.WriteFrames(ctx, mux, w)
		return err
	})

	result := convert.Result{
		State:     convert.StateCompleted,
		Range:     rng,
		Completed: int(frames),
		Elapsed:   time.Since(started),
	}
	if writeErr != nil {
		result.State = convert.StateAborted
		result.Failed = &convert.FrameFailure{Frame: int(frames) + 1, Input: inputs[0], Output: output, Err: writeErr}
		if errors.Is(writeErr, context.Canceled) {
			result.Failed.Frame = 0
		}
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), run.ID, result); err != nil {
		logging.WarnWithContext(logger, "journal finish failed", "journal_write_failed",
			logging.RunID(run.ID),
			logging.Error(err),
		)
	}
	if writeErr != nil {
		return nil, writeErr
	}

	logger.Info("audio multiplex completed",
		logging.RunID(run.ID),
		logging.Int64("frames", frames),
		logging.Duration("elapsed", result.Elapsed),
	)
	return &audioSummary{
		runID:  run.ID,
		desc:   desc,
		inputs: mux.Readers(),
		frames: frames,
		bytes:  fileutil.Size(output),
	}, nil
}

func renderAudioSummary(s *audioSummary) string {
	spf, _ := s.desc.SamplesPerFrame()
	return renderPairs([][2]string{
		{"Run", s.runID},
		{"Inputs", strconv.Itoa(s.inputs)},
		{"Sample rate", strconv.Itoa(s.desc.SampleRate)},
		{"Channels", strconv.Itoa(s.desc.ChannelCount)},
		{"Bit depth", strconv.Itoa(s.desc.BitDepth)},
		{"Block align", strconv.Itoa(s.desc.BlockAlign)},
		{"Edit rate", s.desc.Rate.String()},
		{"Samples per frame", strconv.Itoa(spf)},
		{"Frame size", strconv.Itoa(s.desc.FrameSize())},
		{"Frames", humanize.Comma(s.frames)},
		{"Output size", humanize.Bytes(uint64(max(s.bytes, 0)))},
	})
}
