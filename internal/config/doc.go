// Package config loads, normalizes, and validates esdemedia configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ESDEMEDIA_INPUT_DIR. The Config type centralizes every knob the CLI and the
// converters need, so encoder settings and directory roots are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
