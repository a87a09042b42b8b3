package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dcpkit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.JournalDir = filepath.Join(base, "journal")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Conversion.Workers = 2
	cfgVal.Encoder.Binary = "opj_compress"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the conversion worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Workers = n
	}
}

// WithEncoderScript writes an executable shell script named name whose body
// is script, and points the encoder config at it. The script receives the
// configured encoder arguments.
func WithEncoderScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
			b.t.Fatalf("write encoder script %s: %v", name, err)
		}
		b.cfg.Encoder.Binary = target
	}
}
