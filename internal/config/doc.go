// Package config loads, normalizes, and validates hopper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the HOPPER_CONFIG environment
// fallback. The Config type centralizes every knob the CLI and watch daemon
// need, so watch/archive directories, merge behavior, and lock timing are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a validated delimiter and character encoding, and clear
// startup errors for unusable values.
package config
