// Package config loads, normalizes, and validates cinelog configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_TOKEN and TMDB_API_KEY. The Config type centralizes every knob the CLI
// and the local API server need, so the data directory, store backend and
// metadata credentials are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical backend names, and clear validation errors.
package config
