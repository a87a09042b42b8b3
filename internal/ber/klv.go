package ber

import (
	"encoding/hex"
	"fmt"

	"dcpkit/internal/services"
)

// ULSize is the byte length of a SMPTE Universal Label key.
const ULSize = 16

// UL is a 16-byte Universal Label identifying a KLV packet.
type UL [ULSize]byte

// String renders the label as dotted hex quads, the form used in registers.
func (u UL) String() string {
	out := make([]byte, 0, ULSize*2+3)
	for i := 0; i < ULSize; i += 4 {
		if i > 0 {
			out = append(out, '.')
		}
		out = hex.AppendEncode(out, u[i:i+4])
	}
	return string(out)
}

// Packet is a decoded KLV triplet. Value aliases the source buffer.
type Packet struct {
	Key         UL
	Value       []byte
	LengthBytes int
}

// AppendKLV appends key, BER length, and value to dst. lengthSize follows the
// Encode convention; 0 picks the minimal field.
func AppendKLV(dst []byte, key UL, value []byte, lengthSize int) ([]byte, error) {
	header := make([]byte, 0, ULSize+MaxLength)
	header = append(header, key[:]...)
	header, err := Append(header, uint64(len(value)), lengthSize)
	if err != nil {
		return dst, err
	}
	dst = append(dst, header...)
	return append(dst, value...), nil
}

// ReadKLV decodes one packet from the start of buf and returns the packet and
// the number of bytes it spans.
func ReadKLV(buf []byte) (Packet, int, error) {
	if len(buf) < ULSize+1 {
		return Packet{}, 0, services.Wrap(services.ErrEncoding, component, "read klv",
			fmt.Sprintf("buffer of %d bytes too short for key and length", len(buf)), nil)
	}
	var pkt Packet
	copy(pkt.Key[:], buf[:ULSize])
	length, n, err := Decode(buf[ULSize:])
	if err != nil {
		return Packet{}, 0, err
	}
	start := ULSize + n
	remaining := uint64(len(buf) - start)
	if length > remaining {
		return Packet{}, 0, services.Wrap(services.ErrEncoding, component, "read klv",
			fmt.Sprintf("value length %d exceeds %d available bytes", length, remaining), nil)
	}
	end := start + int(length)
	pkt.Value = buf[start:end:end]
	pkt.LengthBytes = n
	return pkt, end, nil
}
