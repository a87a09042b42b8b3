package textcodec

import (
	"encoding/hex"

	"dcpkit/internal/services"
)

// HexEncode returns the lowercase hex form of src.
func HexEncode(src []byte) string {
	return hex.EncodeToString(src)
}

// HexDigits counts the hex digits in src, ignoring any other characters.
func HexDigits(src string) int {
	count := 0
	for i := 0; i < len(src); i++ {
		if isHexDigit(src[i]) {
			count++
		}
	}
	return count
}

// HexDecode decodes src, ignoring separators such as spaces, '-' and ':'.
func HexDecode(src string) ([]byte, error) {
	digits := HexDigits(src)
	if digits%2 != 0 {
		return nil, services.Wrap(services.ErrEncoding, "hex", "decode", "odd number of hex digits", nil)
	}
	dst := make([]byte, digits/2)
	if _, err := HexDecodeTo(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// HexDecodeTo decodes src into dst. The digit count is validated against
// len(dst) before anything is written.
func HexDecodeTo(dst []byte, src string) (int, error) {
	digits := HexDigits(src)
	if digits%2 != 0 {
		return 0, services.Wrap(services.ErrEncoding, "hex", "decode", "odd number of hex digits", nil)
	}
	need := digits / 2
	if len(dst) < need {
		return 0, &SizeError{Op: "hex decode", Required: need, Have: len(dst)}
	}

	packed := make([]byte, 0, digits)
	for i := 0; i < len(src); i++ {
		if isHexDigit(src[i]) {
			packed = append(packed, src[i])
		}
	}
	n, err := hex.Decode(dst, packed)
	if err != nil {
		return 0, services.Wrap(services.ErrEncoding, "hex", "decode", "", err)
	}
	return n, nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
