// Package services defines shared utilities consumed by every dcpkit
// component.
//
// Key responsibilities:
//   - The closed set of error markers (validation, format mismatch,
//     conversion, encoding, allocation) plus the Wrap helper that attaches
//     component and operation context to a failure.
//   - Context helpers that stamp run identifiers, frame indices, and stage
//     names so log lines can be correlated across worker goroutines.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the pipeline.
package services
