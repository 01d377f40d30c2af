// Package httpapi exposes the collection engine as a local JSON API for a
// browser UI.
//
// Routes live under /api. Request bodies are validated with
// go-playground/validator and failures are mapped from the services error
// markers: validation 400, not found 404, external 502, configuration 503,
// anything else 500. Every request carries a correlation id taken from the
// X-Request-ID header or generated with uuid.
package httpapi
