// Command cinelog manages a personal movie collection: a watchlist, watched
// movies with ratings and reviews, reward points and badges.
//
// Every command opens the local data directory, so only one cinelog process
// can run at a time. `cinelog serve` keeps it open and exposes the same
// operations as a local JSON API.
package main
