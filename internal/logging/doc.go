// Package logging assembles the structured slog loggers used across dcpkit.
//
// It owns the console and JSON handlers, level parsing, and output routing
// (terminal plus an optional JSON log file), and exposes context-aware helpers
// so scheduler workers tag their lines with run identifiers and frame
// indices. NewNop provides a discard logger for tests and optional wiring.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys.
package logging
