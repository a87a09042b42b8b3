// Package sequence turns a directory (or a single file) of essence inputs
// into an ordered FileList and checks that the ordering matches the
// zero-padded frame numbering DCP tooling expects.
//
// Ordering is lexical on NFC-normalized file names so that channel and frame
// order never depends on filesystem iteration order. Gap and name-length
// checks are advisory: they report, callers decide whether to abort.
package sequence
