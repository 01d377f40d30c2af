// Package stats builds chart series from the collection: a genre
// distribution over watched movies and a per-month watched count.
//
// Builders never mutate their input and return empty series for an empty
// collection.
package stats
