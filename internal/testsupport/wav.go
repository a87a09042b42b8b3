package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WAVSpec describes a PCM fixture.
type WAVSpec struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Extensible writes a WAVE_FORMAT_EXTENSIBLE fmt chunk.
	Extensible bool
}

// WriteWAV writes a RIFF/WAVE file whose data chunk is payload. An odd-sized
// LIST chunk precedes the data so readers must skip unknown chunks.
func WriteWAV(t testing.TB, path string, spec WAVSpec, payload []byte) {
	t.Helper()

	blockAlign := spec.Channels * spec.BitDepth / 8
	var fmtChunk []byte
	le := binary.LittleEndian
	if spec.Extensible {
		fmtChunk = make([]byte, 40)
		le.PutUint16(fmtChunk[0:], 0xFFFE)
		le.PutUint16(fmtChunk[16:], 22)
		le.PutUint16(fmtChunk[18:], uint16(spec.BitDepth))
		copy(fmtChunk[24:], []byte{
			0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
			0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71,
		})
	} else {
		fmtChunk = make([]byte, 16)
		le.PutUint16(fmtChunk[0:], 1)
	}
	le.PutUint16(fmtChunk[2:], uint16(spec.Channels))
	le.PutUint32(fmtChunk[4:], uint32(spec.SampleRate))
	le.PutUint32(fmtChunk[8:], uint32(spec.SampleRate*blockAlign))
	le.PutUint16(fmtChunk[12:], uint16(blockAlign))
	le.PutUint16(fmtChunk[14:], uint16(spec.BitDepth))

	list := []byte("INFOx")

	var out []byte
	out = append(out, "RIFF"...)
	out = le.AppendUint32(out, 0)
	out = append(out, "WAVE"...)
	out = appendChunk(out, "fmt ", fmtChunk)
	out = appendChunk(out, "LIST", list)
	out = appendChunk(out, "data", payload)
	le.PutUint32(out[4:], uint32(len(out)-8))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func appendChunk(dst []byte, id string, body []byte) []byte {
	dst = append(dst, id...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(body)))
	dst = append(dst, body...)
	if len(body)%2 == 1 {
		dst = append(dst, 0)
	}
	return dst
}

// PCMPattern returns n sample slots of blockAlign bytes where every byte of
// slot i equals tag+i (mod 256), so interleaving order is easy to assert.
func PCMPattern(tag byte, n, blockAlign int) []byte {
	out := make([]byte, n*blockAlign)
	for i := range n {
		for j := range blockAlign {
			out[i*blockAlign+j] = tag + byte(i)
		}
	}
	return out
}
