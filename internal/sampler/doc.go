// Package sampler provides periodic sampling of value sources for GaugeBoard.
//
// This package is internal to GaugeBoard and handles the periodic reading of
// registered value sources on a fixed interval, emitting the results to a
// channel that feeds the store and, through it, the SSE stream.
//
// The main components are:
//
//   - [Sampler]: Ticker-driven loop reading every source each interval
//   - [Reading]: Result of sampling a single source
//   - [SourceInfo]: A named value-producing function to sample
//
// Source reads are invoked with panic recovery; a panicking source yields a
// failed reading with a correlation ID rather than crashing the sampler.
//
// Users of the gaugeboard library should not need to interact with this
// package directly. Configuration is done through the main gaugeboard package.
package sampler
