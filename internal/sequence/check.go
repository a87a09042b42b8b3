package sequence

import (
	"path/filepath"
	"strconv"
	"strings"
)

// DetectGap walks adjacent pairs of paths and returns the index of the first
// entry that does not continue the numbering of its predecessor. Two names
// continue each other when the last run of digits in their stems is the only
// difference and it increases by exactly one. ok is false when the whole list
// increments consistently.
func DetectGap(paths []string) (index int, ok bool) {
	for i := 1; i < len(paths); i++ {
		if !sequential(paths[i-1], paths[i]) {
			return i, true
		}
	}
	return 0, false
}

// UniformNameLength reports whether every file name has the same length.
// Mixed lengths usually mean the numbering is not zero-padded.
func UniformNameLength(paths []string) bool {
	if len(paths) == 0 {
		return true
	}
	want := len(filepath.Base(paths[0]))
	for _, path := range paths[1:] {
		if len(filepath.Base(path)) != want {
			return false
		}
	}
	return true
}

type numbered struct {
	prefix string
	digits string
	suffix string
}

func sequential(prev, next string) bool {
	a, okA := splitNumber(prev)
	b, okB := splitNumber(next)
	if !okA || !okB {
		return false
	}
	if a.prefix != b.prefix || a.suffix != b.suffix {
		return false
	}
	x, errA := strconv.ParseUint(a.digits, 10, 64)
	y, errB := strconv.ParseUint(b.digits, 10, 64)
	if errA != nil || errB != nil {
		return false
	}
	return y == x+1
}

// splitNumber locates the last maximal run of digits in the file stem.
func splitNumber(path string) (numbered, bool) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	end := -1
	for i := len(stem) - 1; i >= 0; i-- {
		if isDigit(stem[i]) {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return numbered{}, false
	}
	start := end - 1
	for start > 0 && isDigit(stem[start-1]) {
		start--
	}
	return numbered{
		prefix: stem[:start],
		digits: stem[start:end],
		suffix: stem[end:] + filepath.Ext(base),
	}, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Report summarizes the advisory checks for one ordered list.
type Report struct {
	Count     int
	Gap       bool
	GapIndex  int
	GapBefore string
	GapAt     string
	Uniform   bool
}

// Check runs DetectGap and UniformNameLength over paths.
func Check(paths []string) Report {
	report := Report{Count: len(paths), Uniform: UniformNameLength(paths)}
	if idx, ok := DetectGap(paths); ok {
		report.Gap = true
		report.GapIndex = idx
		report.GapBefore = filepath.Base(paths[idx-1])
		report.GapAt = filepath.Base(paths[idx])
	}
	return report
}

// Clean reports whether neither check produced a warning.
func (r Report) Clean() bool {
	return !r.Gap && r.Uniform
}
