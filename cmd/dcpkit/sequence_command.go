package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"dcpkit/internal/config"
	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
)

func newSequenceCommand(ctx *commandContext) *cobra.Command {
	var kindName string
	var listFiles bool

	cmd := &cobra.Command{
		Use:   "sequence <dir>",
		Short: "Check a directory of frames or audio files for gaps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			kind, err := sequenceKind(cfg, kindName)
			if err != nil {
				return err
			}
			paths, err := sequence.List(args[0], kind)
			if err != nil {
				return err
			}
			report := sequence.Check(paths)

			out := cmd.OutOrStdout()
			pairs := [][2]string{
				{"Directory", args[0]},
				{"Kind", kind.Name},
				{"Files", strconv.Itoa(report.Count)},
				{"Continuous", yesNo(!report.Gap)},
				{"Uniform names", yesNo(report.Uniform)},
			}
			if report.Gap {
				pairs = append(pairs, [2]string{"Gap", fmt.Sprintf("%s -> %s (index %d)", report.GapBefore, report.GapAt, report.GapIndex)})
			}
			fmt.Fprintln(out, renderPairs(pairs))

			if listFiles && len(paths) > 0 {
				rows := make([][]string, 0, len(paths))
				for i, path := range paths {
					rows = append(rows, []string{strconv.Itoa(i + 1), filepath.Base(path)})
				}
				fmt.Fprintln(out, renderTable([]string{"Frame", "File"}, rows, []columnAlignment{alignRight, alignLeft}))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindName, "kind", "k", "image", "Input kind: image, codestream, or audio")
	cmd.Flags().BoolVar(&listFiles, "list", false, "List every file in frame order")
	return cmd
}

// sequenceKind resolves a preset by name and applies the configured
// extensions for it.
func sequenceKind(cfg *config.Config, name string) (sequence.Kind, error) {
	kind, ok := sequence.KindByName(name)
	if !ok {
		return sequence.Kind{}, services.Wrap(services.ErrValidation, "cli", "sequence", fmt.Sprintf("unknown kind %q", name), nil)
	}
	switch kind.Name {
	case sequence.Image.Name:
		return kind.WithExtensions(cfg.Conversion.ImageExtensions), nil
	case sequence.Codestream.Name:
		return kind.WithExtensions(cfg.Conversion.CodestreamExtensions), nil
	case sequence.Audio.Name:
		return kind.WithExtensions(cfg.Audio.Extensions), nil
	}
	return kind, nil
}
