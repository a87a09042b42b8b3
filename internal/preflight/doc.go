// Package preflight provides readiness checks for the external encoder and
// the filesystem paths a conversion run depends on.
//
// The CLI runs them before locking the output directory so a missing binary
// or an unwritable destination fails before any frame is dispatched.
package preflight
