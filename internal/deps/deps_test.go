package deps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dcpkit/internal/services"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command detail %q", results[2].Detail)
	}
}

func TestVerify(t *testing.T) {
	statuses := []Status{
		{Name: "Encoder", Available: true},
		{Name: "Optional", Optional: true, Detail: "absent"},
	}
	if err := Verify(statuses); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	statuses = append(statuses, Status{Name: "Missing", Detail: `binary "x" not found`})
	err := Verify(statuses)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Missing") || strings.Contains(err.Error(), "Optional") {
		t.Fatalf("unexpected message %q", err)
	}
}
