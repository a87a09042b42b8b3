package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dcpkit/internal/ber"
	"dcpkit/internal/services"
	"dcpkit/internal/textcodec"
	"dcpkit/internal/timestamp"
	"dcpkit/internal/uuidgen"
)

var skipConfig = map[string]string{"skipConfigLoad": "true"}

func newUUIDCommand() *cobra.Command {
	var count int
	var urn bool

	cmd := &cobra.Command{
		Use:         "uuid",
		Short:       "Generate random version 4 UUIDs",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return services.Wrap(services.ErrValidation, "cli", "uuid", fmt.Sprintf("count %d must be at least 1", count), nil)
			}
			out := cmd.OutOrStdout()
			for range count {
				id, err := uuidgen.New()
				if err != nil {
					return err
				}
				if urn {
					fmt.Fprintln(out, uuidgen.URN(id))
				} else {
					fmt.Fprintln(out, id.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of identifiers to print")
	cmd.Flags().BoolVar(&urn, "urn", false, "Print in urn:uuid: form")
	return cmd
}

func newBERCommand() *cobra.Command {
	berCmd := &cobra.Command{
		Use:         "ber",
		Short:       "Encode and decode BER length fields",
		Annotations: skipConfig,
	}
	berCmd.AddCommand(newBEREncodeCommand())
	berCmd.AddCommand(newBERDecodeCommand())
	return berCmd
}

func newBEREncodeCommand() *cobra.Command {
	var length int
	var asBase64 bool

	cmd := &cobra.Command{
		Use:   "encode <value>",
		Short: "Encode a value as a BER length field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseUint(strings.TrimSpace(args[0]), 0, 64)
			if err != nil {
				return services.Wrap(services.ErrValidation, "cli", "ber encode", fmt.Sprintf("invalid value %q", args[0]), err)
			}
			encoded, err := ber.Encode(value, length)
			if err != nil {
				return err
			}
			if asBase64 {
				fmt.Fprintln(cmd.OutOrStdout(), textcodec.Base64Encode(encoded))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), textcodec.HexEncode(encoded))
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", 0, "Field length in bytes, 1-9 (default minimal)")
	cmd.Flags().BoolVar(&asBase64, "base64", false, "Print base64 instead of hex")
	return cmd
}

func newBERDecodeCommand() *cobra.Command {
	var fromBase64 bool

	cmd := &cobra.Command{
		Use:   "decode <bytes>",
		Short: "Decode a BER length field given as hex (separators allowed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if fromBase64 {
				raw, err = textcodec.Base64Decode(args[0])
			} else {
				raw, err = textcodec.HexDecode(args[0])
			}
			if err != nil {
				return err
			}
			value, n, err := ber.Decode(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "value: %d\n", value)
			fmt.Fprintf(out, "length: %d\n", n)
			if rest := len(raw) - n; rest > 0 {
				fmt.Fprintf(out, "trailing: %d bytes\n", rest)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromBase64, "base64", false, "Read the input as base64")
	return cmd
}

func newTimestampCommand() *cobra.Command {
	var (
		offset     int
		addDays    int
		addMonths  int
		addSeconds int64
	)

	cmd := &cobra.Command{
		Use:         "timestamp [value]",
		Short:       "Normalize an ISO-8601 timestamp (default now)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := timestamp.Now()
			if len(args) == 1 {
				parsed, err := timestamp.Parse(strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				ts = parsed
			}
			ts = ts.AddMonths(addMonths).AddDays(addDays).AddSeconds(addSeconds)

			formatted, err := ts.Format(offset)
			if err != nil {
				return err
			}
			packed, err := ts.MarshalBinary()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "iso: %s\n", formatted)
			fmt.Fprintf(out, "utc: %s\n", ts.String())
			fmt.Fprintf(out, "binary: %s\n", textcodec.HexEncode(packed))
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Zone offset in minutes for the rendered value")
	cmd.Flags().IntVar(&addDays, "add-days", 0, "Shift by whole days")
	cmd.Flags().IntVar(&addMonths, "add-months", 0, "Shift by calendar months")
	cmd.Flags().Int64Var(&addSeconds, "add-seconds", 0, "Shift by seconds")
	return cmd
}
