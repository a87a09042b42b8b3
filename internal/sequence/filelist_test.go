package sequence_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dcpkit/internal/sequence"
	"dcpkit/internal/services"
	"dcpkit/internal/testsupport"
)

func TestBuildFileListDirectory(t *testing.T) {
	base := t.TempDir()
	in := filepath.Join(base, "tiff")
	out := filepath.Join(base, "j2c")
	for _, name := range []string{"frame_003.tif", "frame_001.TIF", "frame_002.tiff", "notes.txt", ".frame_000.tif"} {
		testsupport.WriteFile(t, filepath.Join(in, name), 16)
	}
	if err := os.MkdirAll(filepath.Join(in, "frame_004.tif"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	list, err := sequence.BuildFileList(in, out, sequence.Image)
	if err != nil {
		t.Fatalf("BuildFileList returned error: %v", err)
	}
	if list.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", list.Len(), list.Entries)
	}
	wantInputs := []string{"frame_001.TIF", "frame_002.tiff", "frame_003.tif"}
	for i, want := range wantInputs {
		entry, ok := list.Frame(i + 1)
		if !ok {
			t.Fatalf("missing frame %d", i+1)
		}
		if filepath.Base(entry.Input) != want {
			t.Fatalf("frame %d input = %s, want %s", i+1, entry.Input, want)
		}
		wantOut := filepath.Join(out, want[:len("frame_00x")]+".j2c")
		if entry.Output != wantOut {
			t.Fatalf("frame %d output = %s, want %s", i+1, entry.Output, wantOut)
		}
	}
	if _, ok := list.Frame(0); ok {
		t.Fatal("frame 0 must not resolve")
	}
	if _, ok := list.Frame(4); ok {
		t.Fatal("frame beyond length must not resolve")
	}
}

func TestBuildFileListSingleFile(t *testing.T) {
	base := t.TempDir()
	in := filepath.Join(base, "frame_001.tif")
	testsupport.WriteFile(t, in, 8)
	out := filepath.Join(base, "out.j2c")

	list, err := sequence.BuildFileList(in, out, sequence.Image)
	if err != nil {
		t.Fatalf("BuildFileList returned error: %v", err)
	}
	if list.Len() != 1 || list.Entries[0].Output != out {
		t.Fatalf("unexpected list %+v", list.Entries)
	}

	if _, err := sequence.BuildFileList(in, base, sequence.Image); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for file input with directory output, got %v", err)
	}
}

func TestBuildFileListRejectsMismatches(t *testing.T) {
	base := t.TempDir()
	in := filepath.Join(base, "in")
	testsupport.WriteFile(t, filepath.Join(in, "a.wav"), 8)
	outFile := filepath.Join(base, "out.bin")
	testsupport.WriteFile(t, outFile, 8)

	cases := map[string]func() error{
		"directory input with file output": func() error {
			_, err := sequence.BuildFileList(in, outFile, sequence.Audio)
			return err
		},
		"no matching files": func() error {
			_, err := sequence.BuildFileList(in, filepath.Join(base, "out"), sequence.Image)
			return err
		},
		"missing input": func() error {
			_, err := sequence.BuildFileList(filepath.Join(base, "missing"), filepath.Join(base, "out"), sequence.Image)
			return err
		},
		"wrong extension": func() error {
			_, err := sequence.BuildFileList(filepath.Join(in, "a.wav"), filepath.Join(base, "a.j2c"), sequence.Image)
			return err
		},
		"empty paths": func() error {
			_, err := sequence.BuildFileList("", "", sequence.Image)
			return err
		},
	}
	for name, fn := range cases {
		if err := fn(); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestKindWithExtensions(t *testing.T) {
	kind := sequence.Image.WithExtensions([]string{"PNG", " .exr ", ""})
	if !kind.Matches("/x/frame.png") || !kind.Matches("/x/frame.EXR") {
		t.Fatalf("expected overridden extensions to match: %v", kind.Extensions)
	}
	if kind.Matches("/x/frame.tif") {
		t.Fatal("expected preset extensions to be replaced")
	}
	if same := sequence.Image.WithExtensions(nil); len(same.Extensions) != len(sequence.Image.Extensions) {
		t.Fatal("expected empty override to keep preset")
	}
	if k, ok := sequence.KindByName("WAV"); !ok || k.Name != "audio" {
		t.Fatalf("unexpected kind lookup %v %v", k, ok)
	}
}

func TestFileListAppendRejectsEmptyPaths(t *testing.T) {
	var list sequence.FileList
	if err := list.Append("", "out"); err == nil {
		t.Fatal("expected error for empty input")
	}
	if err := list.Append("in", "out"); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if list.Len() != 1 || len(list.Inputs()) != 1 {
		t.Fatalf("unexpected list state %+v", list)
	}
}
