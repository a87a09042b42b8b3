package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if len(c.Audio.Extensions) == 0 {
		return errors.New("audio.extensions must list at least one extension")
	}
	return c.validateLogging()
}

func (c *Config) validateConversion() error {
	if c.Conversion.Workers < 0 {
		return errors.New("conversion.workers must be zero (all CPUs) or positive")
	}
	switch c.Conversion.Overwrite {
	case OverwriteSkipIfExists, OverwriteAlways:
	default:
		return fmt.Errorf("conversion.overwrite: unsupported value %q (want %q or %q)",
			c.Conversion.Overwrite, OverwriteSkipIfExists, OverwriteAlways)
	}
	if _, _, err := ParseFrameRate(c.Conversion.FrameRate); err != nil {
		return fmt.Errorf("conversion.frame_rate: %w", err)
	}
	if len(c.Conversion.ImageExtensions) == 0 {
		return errors.New("conversion.image_extensions must list at least one extension")
	}
	if len(c.Conversion.CodestreamExtensions) == 0 {
		return errors.New("conversion.codestream_extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.Binary == "" {
		return errors.New("encoder.binary must be set")
	}
	var hasInput, hasOutput bool
	for _, arg := range c.Encoder.Args {
		hasInput = hasInput || strings.Contains(arg, "{input}")
		hasOutput = hasOutput || strings.Contains(arg, "{output}")
	}
	if !hasInput || !hasOutput {
		return errors.New("encoder.args must reference both {input} and {output}")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// ParseFrameRate parses "num/den" or a bare integer into a positive rational.
func ParseFrameRate(value string) (int, int, error) {
	value = strings.TrimSpace(value)
	numText, denText, found := strings.Cut(value, "/")
	if !found {
		denText = "1"
	}
	num, err := strconv.Atoi(strings.TrimSpace(numText))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator in %q", value)
	}
	den, err := strconv.Atoi(strings.TrimSpace(denText))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator in %q", value)
	}
	if num <= 0 || den <= 0 {
		return 0, 0, fmt.Errorf("frame rate %q must be positive", value)
	}
	return num, den, nil
}
