// Package config loads, normalizes, and validates streamwarden
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays environment variables such as
// MEDIA_SERVER_TOKEN. The Config type centralizes every knob the CLI and
// the pause-watch daemon need, including one table per policy rule.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical modes, and clear validation errors.
package config
