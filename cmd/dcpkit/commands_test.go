package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dcpkit/internal/testsupport"
	"dcpkit/internal/uuidgen"
)

func TestAudioInterleavesInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "wav")
	spec := testsupport.WAVSpec{SampleRate: 48000, Channels: 1, BitDepth: 16}
	left := filepath.Join(dir, "left.wav")
	right := filepath.Join(dir, "right.wav")
	testsupport.WriteWAV(t, left, spec, testsupport.PCMPattern(1, 4000, 2))
	testsupport.WriteWAV(t, right, spec, testsupport.PCMPattern(9, 4000, 2))
	output := filepath.Join(env.baseDir, "pcm", "stereo.pcm")

	stdout, _, err := runCLI(t, []string{"audio", output, left, right}, env.configPath)
	if err != nil {
		t.Fatalf("audio: %v", err)
	}
	requireContains(t, stdout, "Samples per frame")
	requireContains(t, stdout, "2000")

	info, err := os.Stat(output)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	// Two frames of 2000 stereo 16-bit slots.
	if info.Size() != 16000 {
		t.Fatalf("output size = %d, want 16000", info.Size())
	}

	history, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, history, "audio")
}

func TestAudioRejectsMismatchedSampleRates(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "wav")
	a := filepath.Join(dir, "a.wav")
	b := filepath.Join(dir, "b.wav")
	testsupport.WriteWAV(t, a, testsupport.WAVSpec{SampleRate: 48000, Channels: 1, BitDepth: 24}, testsupport.PCMPattern(0, 2000, 3))
	testsupport.WriteWAV(t, b, testsupport.WAVSpec{SampleRate: 96000, Channels: 1, BitDepth: 24}, testsupport.PCMPattern(0, 4000, 3))

	_, _, err := runCLI(t, []string{"audio", filepath.Join(env.baseDir, "out.pcm"), a, b}, env.configPath)
	if err == nil {
		t.Fatal("expected mismatched inputs to fail")
	}
	requireContains(t, err.Error(), "format mismatch")
}

func TestSequenceReportsGap(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := filepath.Join(env.baseDir, "tiff")
	for _, name := range []string{"frame_001.tif", "frame_002.tif", "frame_004.tif"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 8)
	}

	stdout, _, err := runCLI(t, []string{"sequence", "--list", dir}, env.configPath)
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	requireContains(t, stdout, "frame_002.tif -> frame_004.tif")
	requireContains(t, stdout, "Continuous")

	_, _, err = runCLI(t, []string{"sequence", "--kind", "video", dir}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown kind to fail")
	}
}

func TestUUIDCommand(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"uuid", "-n", "3"}, "")
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	lines := strings.Fields(stdout)
	if len(lines) != 3 {
		t.Fatalf("expected 3 uuids, got %q", stdout)
	}
	for _, line := range lines {
		id, err := uuidgen.Parse(line)
		if err != nil {
			t.Fatalf("parse %q: %v", line, err)
		}
		if id.Version() != 4 {
			t.Fatalf("uuid %s has version %d", line, id.Version())
		}
	}

	stdout, _, err = runCLI(t, []string{"uuid", "--urn"}, "")
	if err != nil {
		t.Fatalf("uuid --urn: %v", err)
	}
	requireContains(t, stdout, "urn:uuid:")
}

func TestBERCommands(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"ber", "encode", "300"}, "")
	if err != nil {
		t.Fatalf("ber encode: %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "82012c" {
		t.Fatalf("ber encode 300 = %q, want 82012c", got)
	}

	stdout, _, err = runCLI(t, []string{"ber", "encode", "--length", "4", "300"}, "")
	if err != nil {
		t.Fatalf("ber encode --length: %v", err)
	}
	if got := strings.TrimSpace(stdout); got != "8300012c" {
		t.Fatalf("ber encode 300 in 4 bytes = %q, want 8300012c", got)
	}

	stdout, _, err = runCLI(t, []string{"ber", "decode", "82:01:2c:ff"}, "")
	if err != nil {
		t.Fatalf("ber decode: %v", err)
	}
	requireContains(t, stdout, "value: 300")
	requireContains(t, stdout, "length: 3")
	requireContains(t, stdout, "trailing: 1 bytes")

	if _, _, err := runCLI(t, []string{"ber", "decode", "83 01"}, ""); err == nil {
		t.Fatal("expected truncated field to fail")
	}
	if _, _, err := runCLI(t, []string{"ber", "encode", "--length", "1", "300"}, ""); err == nil {
		t.Fatal("expected value too wide for a 1-byte field to fail")
	}
}

func TestTimestampCommand(t *testing.T) {
	stdout, _, err := runCLI(t, []string{"timestamp", "--add-months", "1", "--offset", "120", "2024-01-31T10:00:00+02:00"}, "")
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	requireContains(t, stdout, "iso: 2024-03-02T10:00:00+02:00")
	requireContains(t, stdout, "utc: 2024-03-02T08:00:00+00:00")
	requireContains(t, stdout, "binary: 07e8030208000000")

	if _, _, err := runCLI(t, []string{"timestamp", "2024-01-31T10:00:00"}, ""); err == nil {
		t.Fatal("expected timestamp without zone to fail")
	}
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[encoder]")
	requireContains(t, out, env.cfg.Paths.JournalDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
}
