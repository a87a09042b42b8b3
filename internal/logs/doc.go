// Package logs reads back the JSON log file written next to the journal.
//
// Tail returns the last N matching lines with bounded memory, or everything
// after a byte offset, and can poll for new lines in follow mode. A Filter
// narrows the output to one run, component, or minimum level by decoding each
// JSON record; lines that are not JSON only pass an empty filter.
package logs
