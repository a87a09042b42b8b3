package textcodec_test

import (
	"bytes"
	"errors"
	"testing"

	"dcpkit/internal/textcodec"
)

func TestHexRoundTrip(t *testing.T) {
	src := []byte{0x00, 0x01, 0xab, 0xff}
	encoded := textcodec.HexEncode(src)
	if encoded != "0001abff" {
		t.Fatalf("unexpected encoding %q", encoded)
	}
	decoded, err := textcodec.HexDecode(encoded)
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if !bytes.Equal(decoded, src) {
		t.Fatalf("round trip mismatch: %x", decoded)
	}
}

func TestHexDecodeIgnoresSeparators(t *testing.T) {
	got, err := textcodec.HexDecode("DE:AD-be ef")
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if !bytes.Equal(got, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("unexpected decode %x", got)
	}
}

func TestHexDecodeToValidatesCapacity(t *testing.T) {
	dst := make([]byte, 2)
	_, err := textcodec.HexDecodeTo(dst, "010203")
	var sizeErr *textcodec.SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected size error, got %v", err)
	}
	if sizeErr.Required != 3 || sizeErr.Have != 2 {
		t.Fatalf("unexpected size error %+v", sizeErr)
	}
	if !bytes.Equal(dst, []byte{0, 0}) {
		t.Fatalf("expected untouched destination, got %x", dst)
	}
}

func TestHexDecodeRejectsOddDigits(t *testing.T) {
	if _, err := textcodec.HexDecode("abc"); err == nil {
		t.Fatal("expected error for odd digit count")
	}
	if got := textcodec.HexDigits("a-b c"); got != 3 {
		t.Fatalf("HexDigits = %d, want 3", got)
	}
}
