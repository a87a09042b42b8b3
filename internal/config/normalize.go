package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeEncoder()
	c.Audio.Extensions = normalizeExtensions(c.Audio.Extensions)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.JournalDir) == "" {
		c.Paths.JournalDir = defaultJournalDir
	}
	if c.Paths.JournalDir, err = expandPath(strings.TrimSpace(c.Paths.JournalDir)); err != nil {
		return fmt.Errorf("paths.journal_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Overwrite = strings.ToLower(strings.TrimSpace(c.Conversion.Overwrite))
	if c.Conversion.Overwrite == "" {
		c.Conversion.Overwrite = defaultOverwrite
	}
	c.Conversion.FrameRate = strings.ReplaceAll(strings.TrimSpace(c.Conversion.FrameRate), " ", "")
	if c.Conversion.FrameRate == "" {
		c.Conversion.FrameRate = defaultFrameRate
	}
	c.Conversion.ImageExtensions = normalizeExtensions(c.Conversion.ImageExtensions)
	c.Conversion.CodestreamExtensions = normalizeExtensions(c.Conversion.CodestreamExtensions)
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Binary = strings.TrimSpace(c.Encoder.Binary)
	if c.Encoder.Binary == "" {
		if value, ok := os.LookupEnv(EncoderEnv); ok {
			c.Encoder.Binary = strings.TrimSpace(value)
		}
	}
	if c.Encoder.Binary == "" {
		c.Encoder.Binary = defaultEncoder
	}
	if len(c.Encoder.Args) == 0 {
		c.Encoder.Args = defaultEncoderArgs()
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
		c.Logging.Format = "json"
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	if level == "warning" {
		level = "warn"
	}
	c.Logging.Level = level
}

// normalizeExtensions lowercases entries, adds a leading dot, and drops
// blanks and duplicates while preserving order.
func normalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return exts
	}
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}
