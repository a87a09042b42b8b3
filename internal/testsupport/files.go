package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes size bytes to path, creating parent directories. The
// content cycles through the bytes of the file's base name so distinct frames
// carry distinct payloads. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	seed := []byte(filepath.Base(path))
	payload := make([]byte, max(size, 1))
	for i := range payload {
		payload[i] = seed[i%len(seed)]
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteSequence creates count files named <prefix><NNN><ext> (1-based,
// zero-padded to three digits) in dir and returns their paths in order.
func WriteSequence(t testing.TB, dir, prefix, ext string, count int) []string {
	t.Helper()

	paths := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%03d%s", prefix, i, ext))
		WriteFile(t, path, int64(16+i))
		paths = append(paths, path)
	}
	return paths
}
