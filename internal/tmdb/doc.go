// Package tmdb provides the minimal TMDB API client used to enrich movies as
// they enter the collection.
//
// It authenticates with a v4 bearer token, a v3 api_key query parameter, or
// both, and exposes movie details, the movie genre list, title search and the
// weekly trending list. Every request carries the configured language tag.
// Non-200 responses become ErrExternal errors that include the status and
// body; nothing is retried. Options allow tests to supply custom HTTP clients.
package tmdb
