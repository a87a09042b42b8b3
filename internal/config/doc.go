// Package config loads, normalizes, and validates dcpkit configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the DCPKIT_ENCODER environment
// fallback. The Config type centralizes the worker count, overwrite policy,
// extension sets, and external encoder command so the CLI discovers them in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
