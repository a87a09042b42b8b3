// Package journal records conversion runs and their per-frame outcomes in
// SQLite so an aborted run can be resumed from the first frame that never
// finished.
//
// The journal is a log, not a source of truth for output files: skip-if-exists
// still inspects the filesystem. Schema changes bump schemaVersion in
// schema.go; users delete journal.db to adopt the new schema.
package journal
