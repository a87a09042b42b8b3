package ber_test

import (
	"bytes"
	"testing"

	"dcpkit/internal/ber"
)

var testKey = ber.UL{
	0x06, 0x0e, 0x2b, 0x34, 0x01, 0x02, 0x01, 0x01,
	0x0d, 0x01, 0x03, 0x01, 0x15, 0x01, 0x08, 0x01,
}

func TestKLVRoundTrip(t *testing.T) {
	value := bytes.Repeat([]byte{0x5a}, 300)
	packet, err := ber.AppendKLV(nil, testKey, value, 4)
	if err != nil {
		t.Fatalf("AppendKLV returned error: %v", err)
	}
	if len(packet) != ber.ULSize+4+len(value) {
		t.Fatalf("unexpected packet size %d", len(packet))
	}
	packet = append(packet, 0xff) // trailing data belongs to the next packet

	got, n, err := ber.ReadKLV(packet)
	if err != nil {
		t.Fatalf("ReadKLV returned error: %v", err)
	}
	if n != len(packet)-1 {
		t.Fatalf("unexpected consumed size %d", n)
	}
	if got.Key != testKey {
		t.Fatalf("unexpected key %s", got.Key)
	}
	if got.LengthBytes != 4 {
		t.Fatalf("unexpected length field size %d", got.LengthBytes)
	}
	if !bytes.Equal(got.Value, value) {
		t.Fatal("value mismatch")
	}
}

func TestReadKLVRejectsShortValue(t *testing.T) {
	packet, err := ber.AppendKLV(nil, testKey, []byte{1, 2, 3, 4}, 0)
	if err != nil {
		t.Fatalf("AppendKLV returned error: %v", err)
	}
	if _, _, err := ber.ReadKLV(packet[:len(packet)-1]); err == nil {
		t.Fatal("expected error for truncated value")
	}
	if _, _, err := ber.ReadKLV(packet[:10]); err == nil {
		t.Fatal("expected error for truncated key")
	}
}

func TestULString(t *testing.T) {
	want := "060e2b34.01020101.0d010301.15010801"
	if got := testKey.String(); got != want {
		t.Fatalf("UL.String() = %q, want %q", got, want)
	}
}
