// Package store provides storage and pub/sub functionality for value readings.
//
// This package is internal to GaugeBoard and holds the most recent reading
// of every registered value source. It implements a publish-subscribe
// pattern so the HTTP layer can stream updates to connected dashboard
// clients in real time.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [Reading]: Storage representation of a single sampled value
//
// The store retains only the latest reading per source; it is not a
// time-series store and keeps no history. Subscribers receive updates via
// channels with non-blocking sends (slow subscribers will miss updates
// rather than block the system).
//
// Users of the gaugeboard library should not need to interact with this
// package directly. Storage is managed internally by Board.
package store
