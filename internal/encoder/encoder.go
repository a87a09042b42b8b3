// Package encoder compresses single frames by invoking an external JPEG2000
// encoder such as opj_compress.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dcpkit/internal/config"
	"dcpkit/internal/deps"
	"dcpkit/internal/fileutil"
	"dcpkit/internal/logging"
	"dcpkit/internal/services"
)

var commandContext = exec.CommandContext

const (
	// DefaultBinary is the OpenJPEG command-line encoder.
	DefaultBinary = "opj_compress"

	placeholderInput  = "{input}"
	placeholderOutput = "{output}"

	// maxStderr bounds how much tool output is folded into an error.
	maxStderr = 2048
)

// Option configures the CLI encoder.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithArgs overrides the argument template. It must contain {input} and
// {output}.
func WithArgs(args ...string) Option {
	return func(c *CLI) {
		if len(args) > 0 {
			c.args = append([]string(nil), args...)
		}
	}
}

// WithLogger attaches a logger for per-frame command traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		c.logger = logging.NewComponentLogger(logger, "encoder")
	}
}

// CLI wraps an external frame encoder.
type CLI struct {
	binary string
	args   []string
	logger *slog.Logger
}

// NewCLI constructs an encoder using opj_compress defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary: DefaultBinary,
		args:   []string{"-i", placeholderInput, "-o", placeholderOutput},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// FromConfig builds an encoder from the [encoder] section.
func FromConfig(cfg *config.Config, logger *slog.Logger) *CLI {
	return NewCLI(WithBinary(cfg.Encoder.Binary), WithArgs(cfg.Encoder.Args...), WithLogger(logger))
}

// Requirements lists the binaries the configured encoder needs.
func Requirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{{
		Name:        "JPEG2000 encoder",
		Command:     cfg.Encoder.Binary,
		Description: "Required to compress image frames into codestreams",
	}}
}

// Binary returns the executable the encoder runs.
func (c *CLI) Binary() string { return c.binary }

// Compress encodes input into output. The encoder writes a hidden partial
// sibling which is renamed over output only after the tool succeeds, so a
// failed or interrupted frame never leaves a truncated codestream behind.
func (c *CLI) Compress(ctx context.Context, input, output string) error {
	if strings.TrimSpace(input) == "" || strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrValidation, "encoder", "compress", "input and output paths are required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return services.Wrap(services.ErrConversion, "encoder", "compress", "create output directory", err)
	}
	partial := fileutil.PartialPath(output)
	_ = os.Remove(partial)

	args := c.expandArgs(input, partial)
	logger := logging.WithContext(ctx, c.logger)
	logger.Debug("running encoder",
		logging.String("binary", c.binary),
		logging.String("args", strings.Join(args, " ")),
	)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(partial)
		return services.Wrap(services.ErrExternalTool, "encoder", "compress",
			fmt.Sprintf("%s %s", filepath.Base(c.binary), summarizeStderr(stderr.Bytes())), err)
	}

	info, err := os.Stat(partial)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(partial)
		return services.Wrap(services.ErrExternalTool, "encoder", "compress",
			fmt.Sprintf("%s produced no output for %s", filepath.Base(c.binary), filepath.Base(input)), err)
	}
	if err := fileutil.ReplaceFile(partial, output); err != nil {
		return services.Wrap(services.ErrConversion, "encoder", "compress", "move output into place", err)
	}
	return nil
}

func (c *CLI) expandArgs(input, output string) []string {
	replacer := strings.NewReplacer(placeholderInput, input, placeholderOutput, output)
	args := make([]string, len(c.args))
	for i, arg := range c.args {
		args[i] = replacer.Replace(arg)
	}
	return args
}

func summarizeStderr(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "failed"
	}
	if len(text) > maxStderr {
		text = "..." + text[len(text)-maxStderr:]
	}
	return "failed: " + text
}
