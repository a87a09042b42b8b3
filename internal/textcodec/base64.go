package textcodec

import (
	"encoding/base64"
	"strings"

	"dcpkit/internal/services"
)

// Terminator stops base64 decoding when encountered in the input.
const Terminator = 0

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Valid = func() [256]bool {
	var table [256]bool
	for i := 0; i < len(base64Alphabet); i++ {
		table[base64Alphabet[i]] = true
	}
	table['='] = true
	return table
}()

// Base64Encode returns the padded standard-alphabet encoding of src.
func Base64Encode(src []byte) string {
	return base64.StdEncoding.EncodeToString(src)
}

// Base64EncodeTo writes the encoding of src into dst and returns the number
// of bytes written.
func Base64EncodeTo(dst, src []byte) (int, error) {
	need := base64.StdEncoding.EncodedLen(len(src))
	if len(dst) < need {
		return 0, &SizeError{Op: "base64 encode", Required: need, Have: len(dst)}
	}
	base64.StdEncoding.Encode(dst, src)
	return need, nil
}

// Base64Decode decodes src, skipping characters outside the alphabet.
// Padding is not optional: after filtering, the input must be a whole number
// of 4-character quanta with trailing '=' as needed, so unpadded input such as
// "aGVsbG8" fails with an encoding error.
func Base64Decode(src string) ([]byte, error) {
	clean := base64Filter(src)
	dst := make([]byte, base64.StdEncoding.DecodedLen(len(clean)))
	n, err := decodeFiltered(dst, clean)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}

// Base64DecodeTo decodes src into dst and returns the number of bytes
// written. When dst is too small a *SizeError reports the exact size needed
// and dst is left untouched. Padding rules match Base64Decode.
func Base64DecodeTo(dst []byte, src string) (int, error) {
	clean := base64Filter(src)
	need, err := base64DecodedSize(clean)
	if err != nil {
		return 0, err
	}
	if len(dst) < need {
		return 0, &SizeError{Op: "base64 decode", Required: need, Have: len(dst)}
	}
	scratch := make([]byte, base64.StdEncoding.DecodedLen(len(clean)))
	n, err := decodeFiltered(scratch, clean)
	if err != nil {
		return 0, err
	}
	return copy(dst, scratch[:n]), nil
}

// Base64DecodedSize returns the exact number of bytes src decodes to.
func Base64DecodedSize(src string) (int, error) {
	return base64DecodedSize(base64Filter(src))
}

func base64DecodedSize(clean string) (int, error) {
	if len(clean)%4 != 0 {
		return 0, services.Wrap(services.ErrEncoding, "base64", "decode", "input is not a whole number of quanta", nil)
	}
	pad := len(clean) - len(strings.TrimRight(clean, "="))
	if pad > 2 {
		return 0, services.Wrap(services.ErrEncoding, "base64", "decode", "too much padding", nil)
	}
	return len(clean)/4*3 - pad, nil
}

func decodeFiltered(dst []byte, clean string) (int, error) {
	n, err := base64.StdEncoding.Decode(dst, []byte(clean))
	if err != nil {
		return 0, services.Wrap(services.ErrEncoding, "base64", "decode", "", err)
	}
	return n, nil
}

// base64Filter drops bytes outside the alphabet and truncates at the first
// terminator.
func base64Filter(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == Terminator {
			break
		}
		if base64Valid[c] {
			b.WriteByte(c)
		}
	}
	return b.String()
}
