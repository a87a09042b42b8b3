package sequence_test

import (
	"fmt"
	"testing"

	"dcpkit/internal/sequence"
)

func framePaths(first, last int, skip ...int) []string {
	skipped := make(map[int]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	var paths []string
	for i := first; i <= last; i++ {
		if skipped[i] {
			continue
		}
		paths = append(paths, fmt.Sprintf("/in/frame_%03d.tif", i))
	}
	return paths
}

func TestDetectGapContinuous(t *testing.T) {
	if idx, ok := sequence.DetectGap(framePaths(1, 10)); ok {
		t.Fatalf("expected no gap, got index %d", idx)
	}
	if _, ok := sequence.DetectGap(nil); ok {
		t.Fatal("expected no gap for empty list")
	}
	if _, ok := sequence.DetectGap([]string{"/in/only.tif"}); ok {
		t.Fatal("expected no gap for single entry")
	}
}

func TestDetectGapMissingFrame(t *testing.T) {
	idx, ok := sequence.DetectGap(framePaths(1, 10, 5))
	if !ok {
		t.Fatal("expected gap")
	}
	if idx != 4 {
		t.Fatalf("expected gap index 4, got %d", idx)
	}
}

func TestDetectGapWithoutNumbers(t *testing.T) {
	idx, ok := sequence.DetectGap([]string{"a.tif", "b.tif", "c.tif"})
	if !ok || idx != 1 {
		t.Fatalf("expected gap at 1, got %d %v", idx, ok)
	}
}

func TestDetectGapRequiresMatchingPrefix(t *testing.T) {
	paths := []string{"reel1_0001.tif", "reel1_0002.tif", "reel2_0003.tif"}
	idx, ok := sequence.DetectGap(paths)
	if !ok || idx != 2 {
		t.Fatalf("expected gap at 2, got %d %v", idx, ok)
	}
}

func TestDetectGapUsesLastDigitRun(t *testing.T) {
	paths := []string{"r2_take3_0009.tif", "r2_take3_0010.tif", "r2_take3_0011.tif"}
	if idx, ok := sequence.DetectGap(paths); ok {
		t.Fatalf("expected continuous sequence, gap at %d", idx)
	}
	paths = []string{"shot_01_v1.tif", "shot_01_v2.tif"}
	if idx, ok := sequence.DetectGap(paths); ok {
		t.Fatalf("expected digits before suffix to count, gap at %d", idx)
	}
}

func TestUniformNameLength(t *testing.T) {
	if !sequence.UniformNameLength(framePaths(1, 20)) {
		t.Fatal("expected uniform lengths for zero-padded names")
	}
	if sequence.UniformNameLength([]string{"/in/f_9.tif", "/in/f_10.tif"}) {
		t.Fatal("expected mixed lengths to be detected")
	}
	if !sequence.UniformNameLength(nil) {
		t.Fatal("expected empty list to be uniform")
	}
}

func TestCheckReport(t *testing.T) {
	report := sequence.Check(framePaths(1, 10, 5))
	if report.Clean() {
		t.Fatal("expected report with gap")
	}
	if report.Count != 9 || report.GapIndex != 4 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.GapBefore != "frame_004.tif" || report.GapAt != "frame_006.tif" {
		t.Fatalf("unexpected gap names %+v", report)
	}
	if !sequence.Check(framePaths(1, 3)).Clean() {
		t.Fatal("expected clean report")
	}
}
