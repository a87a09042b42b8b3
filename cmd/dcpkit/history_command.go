package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dcpkit/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled conversion runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				return printRunFrames(cmd, store, id)
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.Kind,
					run.State,
					fmt.Sprintf("%d-%d", run.Start, run.End),
					strconv.Itoa(run.Completed),
					strconv.Itoa(run.Skipped),
					failedLabel(&run),
					startedLabel(run.StartedAt),
					run.Output,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Kind", "State", "Range", "Done", "Skipped", "Failed", "Started", "Output"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-frame outcomes for one run")
	return cmd
}

func printRunFrames(cmd *cobra.Command, store *journal.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	frames, err := store.Frames(cmd.Context(), runID)
	if err != nil {
		return err
	}
	resume, err := store.ResumeStart(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	resumeLabel := strconv.Itoa(resume)
	if resume > run.End {
		resumeLabel = "-"
	}
	fmt.Fprintln(out, renderPairs([][2]string{
		{"Run", run.ID},
		{"Kind", run.Kind},
		{"State", run.State},
		{"Input", run.Input},
		{"Output", run.Output},
		{"Range", fmt.Sprintf("%d-%d @ %s", run.Start, run.End, run.EditRate)},
		{"Workers", strconv.Itoa(run.Workers)},
		{"Overwrite", run.Overwrite},
		{"Failed", failedLabel(run)},
		{"Error", run.ErrorMessage},
		{"Resume from", resumeLabel},
	}))
	if len(frames) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(frames))
	for _, f := range frames {
		rows = append(rows, []string{
			strconv.Itoa(f.Frame),
			f.Outcome,
			f.Elapsed.Round(time.Millisecond).String(),
			f.Output,
			f.ErrorMessage,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Frame", "Outcome", "Elapsed", "Output", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func failedLabel(run *journal.Run) string {
	switch {
	case run.ErrorKind == "":
		return "-"
	case run.FailedFrame == 0:
		return "interrupted"
	default:
		return fmt.Sprintf("%d (%s)", run.FailedFrame, run.ErrorKind)
	}
}

func startedLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
