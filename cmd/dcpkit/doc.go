// Package main hosts the dcpkit CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds a logger from
// it, and hands each subcommand a context cancelled on SIGINT or SIGTERM.
// Conversion commands lock their output directory, record every run in the
// SQLite journal, and print a summary table when they finish. The encoding
// helpers (uuid, ber, timestamp) need no configuration.
package main
