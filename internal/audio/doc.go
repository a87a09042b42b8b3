// Package audio opens PCM audio readers and multiplexes them into one
// interleaved stream, one edit-rate frame at a time.
//
// Channel order in the output is exactly the order the readers were declared
// in. Callers that expand a directory get the sorted order of
// sequence.List, never the file system's iteration order.
package audio
