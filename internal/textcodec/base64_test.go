package textcodec_test

import (
	"bytes"
	"errors"
	"testing"

	"dcpkit/internal/services"
	"dcpkit/internal/textcodec"
)

func TestBase64RoundTrip(t *testing.T) {
	for _, size := range []int{0, 1, 2, 3, 300} {
		buf := make([]byte, size)
		for i := range buf {
			buf[i] = byte(i * 7)
		}
		encoded := textcodec.Base64Encode(buf)
		decoded, err := textcodec.Base64Decode(encoded)
		if err != nil {
			t.Fatalf("size %d: decode returned error: %v", size, err)
		}
		if !bytes.Equal(decoded, buf) {
			t.Fatalf("size %d: round trip mismatch", size)
		}
	}
}

func TestBase64DecodeSkipsForeignCharacters(t *testing.T) {
	got, err := textcodec.Base64Decode("aGVs\nbG8g\r\n d29y bGQ=")
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("unexpected decode %q", got)
	}
}

func TestBase64DecodeStopsAtTerminator(t *testing.T) {
	got, err := textcodec.Base64Decode("aGVsbG8=\x00garbage")
	if err != nil {
		t.Fatalf("decode returned error: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("unexpected decode %q", got)
	}
}

func TestBase64DecodeToReportsRequiredSize(t *testing.T) {
	dst := make([]byte, 4)
	n, err := textcodec.Base64DecodeTo(dst, "aGVsbG8=")
	if err == nil {
		t.Fatal("expected size error")
	}
	var sizeErr *textcodec.SizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected *SizeError, got %T", err)
	}
	if sizeErr.Required != 5 {
		t.Fatalf("expected required size 5, got %d", sizeErr.Required)
	}
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding marker, got %v", err)
	}
	if n != 0 || !bytes.Equal(dst, make([]byte, 4)) {
		t.Fatalf("expected destination untouched, got n=%d dst=%x", n, dst)
	}

	dst = make([]byte, 5)
	n, err = textcodec.Base64DecodeTo(dst, "aGVsbG8=")
	if err != nil || n != 5 || string(dst) != "hello" {
		t.Fatalf("unexpected decode: n=%d err=%v dst=%q", n, err, dst)
	}
}

func TestBase64EncodeToReportsRequiredSize(t *testing.T) {
	_, err := textcodec.Base64EncodeTo(make([]byte, 3), []byte("hello"))
	var sizeErr *textcodec.SizeError
	if !errors.As(err, &sizeErr) || sizeErr.Required != 8 {
		t.Fatalf("expected size error requiring 8 bytes, got %v", err)
	}
}

func TestBase64DecodeRejectsPartialQuantum(t *testing.T) {
	if _, err := textcodec.Base64Decode("aGVsbG8"); err == nil {
		t.Fatal("expected error for truncated input")
	}
	if _, err := textcodec.Base64DecodeTo(make([]byte, 8), "aGVsbG8"); !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected encoding error for unpadded input, got %v", err)
	}
	if _, err := textcodec.Base64DecodedSize("a==="); err == nil {
		t.Fatal("expected error for excessive padding")
	}
}
