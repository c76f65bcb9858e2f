// Package config loads, normalizes, and validates Loom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LOOM_ALIGNER and LOOM_DICTIONARY. The Config type centralizes every knob
// the CLI needs, so workspace layout, aligner invocation, and dictionary
// locations are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
