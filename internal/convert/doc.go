// Package convert runs a frame conversion job across a bounded worker pool.
//
// Frames are handed to workers in ascending order, one index per worker, and
// every output is addressed by its frame index so the on-disk layout never
// depends on completion order. The first frame failure cancels the run;
// frames already written stay on disk and the Result names the failing frame
// so callers can resume from the first missing frame.
package convert
