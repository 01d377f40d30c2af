// Package kvstore provides the durable local key-value store that every
// cinelog collection value lives in.
//
// A Store maps a string key to an opaque byte value and replaces the whole
// value on each Set. Three backends share the contract: BadgerDB (default),
// SQLite through modernc.org/sqlite, and a single JSON file written by atomic
// rename. Each Set is atomic for its key; there are no cross-key transactions.
package kvstore
