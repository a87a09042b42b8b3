package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dcpkit/internal/config"
	"dcpkit/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if !CheckReadable("file", f).Passed {
		t.Fatal("expected readable file to pass")
	}
	if CheckReadable("missing", f+".nope").Passed {
		t.Fatal("expected missing file to fail")
	}
}

func TestRunConversion(t *testing.T) {
	binDir := t.TempDir()
	encoder := filepath.Join(binDir, "fake_compress")
	if err := os.WriteFile(encoder, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Encoder.Binary = encoder
	out := t.TempDir()

	results := RunConversion(&cfg, out)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if err := Failed(results); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}

	cfg.Encoder.Binary = "clearly-not-present-binary"
	err := Failed(RunConversion(&cfg, filepath.Join(out, "missing")))
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
