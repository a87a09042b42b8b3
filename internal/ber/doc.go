// Package ber implements the variable-length big-endian integer encoding used
// for KLV length fields in MXF-style essence containers, plus minimal KLV
// packet helpers built on top of it.
//
// The wire form is a marker byte 0x80|(length-1) followed by length-1 value
// bytes, most significant first. Lengths range from 1 to 9 bytes. Every
// function reports malformed input as an error wrapping
// services.ErrEncoding; nothing here panics on hostile data.
package ber
