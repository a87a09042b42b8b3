// Package textcodec provides the base64 and hex codecs used for digests,
// key material, and identifiers written into packing lists and asset maps.
//
// Decoders tolerate the separators and line breaks found in hand-edited XML
// and pre-validate destination capacity so an undersized buffer is reported
// with the exact size required instead of being partially written.
package textcodec
