package ber

import (
	"fmt"

	"dcpkit/internal/services"
)

// MaxLength is the widest BER field this package reads or writes.
const MaxLength = 9

const component = "ber"

// masks[i] selects the bits that must be zero for a value to fit into a field
// of i+1 bytes (one marker byte plus i value bytes).
var masks = [MaxLength]uint64{
	0xffffffffffffffff,
	0xffffffffffffff00,
	0xffffffffffff0000,
	0xffffffffff000000,
	0xffffffff00000000,
	0xffffff0000000000,
	0xffff000000000000,
	0xff00000000000000,
	0x0000000000000000,
}

// MinLength returns the smallest field length able to carry value.
func MinLength(value uint64) int {
	for i, mask := range masks {
		if value&mask == 0 {
			return i + 1
		}
	}
	return MaxLength
}

// Fits reports whether value can be written into a field of the given length.
func Fits(value uint64, length int) bool {
	if length < 1 || length > MaxLength {
		return false
	}
	return value&masks[length-1] == 0
}

// Encode returns the BER form of value using length bytes. A length of 0
// selects MinLength(value).
func Encode(value uint64, length int) ([]byte, error) {
	return Append(nil, value, length)
}

// Append appends the BER form of value to dst. On failure dst is returned
// unchanged alongside the error.
func Append(dst []byte, value uint64, length int) ([]byte, error) {
	if length == 0 {
		length = MinLength(value)
	}
	if length < 0 || length > MaxLength {
		return dst, services.Wrap(services.ErrEncoding, component, "encode",
			fmt.Sprintf("length %d outside 1..%d", length, MaxLength), nil)
	}
	if !Fits(value, length) {
		return dst, services.Wrap(services.ErrEncoding, component, "encode",
			fmt.Sprintf("value %d does not fit in %d-byte field", value, length), nil)
	}
	dst = append(dst, 0x80|byte(length-1))
	for shift := (length - 2) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(value>>uint(shift)))
	}
	return dst, nil
}

// Put writes the BER form of value into buf and returns the bytes written.
// buf must hold at least length bytes (or MinLength(value) when length is 0).
func Put(buf []byte, value uint64, length int) (int, error) {
	if length == 0 {
		length = MinLength(value)
	}
	if length < 0 || length > MaxLength {
		return 0, services.Wrap(services.ErrEncoding, component, "encode",
			fmt.Sprintf("length %d outside 1..%d", length, MaxLength), nil)
	}
	if len(buf) < length {
		return 0, services.Wrap(services.ErrEncoding, component, "encode",
			fmt.Sprintf("destination holds %d bytes, need %d", len(buf), length), nil)
	}
	out, err := Append(buf[:0], value, length)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Decode parses a BER field from the start of buf and returns the value and
// the number of bytes consumed.
func Decode(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, services.Wrap(services.ErrEncoding, component, "decode", "empty buffer", nil)
	}
	marker := buf[0]
	if marker&0x80 == 0 {
		return 0, 0, services.Wrap(services.ErrEncoding, component, "decode",
			fmt.Sprintf("first byte 0x%02x is not a length marker", marker), nil)
	}
	length := int(marker&0x7f) + 1
	if length > MaxLength {
		return 0, 0, services.Wrap(services.ErrEncoding, component, "decode",
			fmt.Sprintf("declared length %d exceeds %d", length, MaxLength), nil)
	}
	if length > len(buf) {
		return 0, 0, services.Wrap(services.ErrEncoding, component, "decode",
			fmt.Sprintf("declared length %d exceeds %d available bytes", length, len(buf)), nil)
	}
	var value uint64
	for _, b := range buf[1:length] {
		value = value<<8 | uint64(b)
	}
	return value, length, nil
}
