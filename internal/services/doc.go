// Package services defines shared utilities consumed by the collection engine,
// its stores, and the adapters that expose them.
//
// Key responsibilities:
//   - Context helpers that stamp movie IDs, operation names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so adapters can classify
//     failures (validation, configuration, not found, external) with errors.Is.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform across the CLI and the HTTP adapter.
package services
