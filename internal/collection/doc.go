// Package collection implements the movie collection state machine.
//
// Engine is the only writer of the collection. Every mutating operation
// holds the engine mutex across the full read, compute, write and reward
// sequence, so callers in one process never lose each other's writes. A
// record moves between absent, WATCHLIST and WATCHED; the first transition
// into WATCHED within a call awards reward points and runs the badge check.
// Re-marking an already watched movie refreshes watchedAt and awards nothing.
//
// Reward and badge values live under their own keys and are written after the
// collection. A crash between the writes can drop an award but never grants
// one twice.
package collection
