// Package gaugeboard provides a lightweight, embeddable live-value service
// for exposing numeric readings (real or simulated) over HTTP.
//
// GaugeBoard is designed as an SDK-first library, allowing developers to
// serve gauge-style dashboard data as part of their applications. It follows
// functional programming principles with composable configuration via the
// functional options pattern.
//
// # Quick Start
//
// Start a board serving a simulated oscillating value with graceful shutdown:
//
//	board, _ := gaugeboard.New(gaugeboard.WithSimulatorBounds(0, 180))
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// GaugeBoard uses the functional options pattern for configuration:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithMode(gaugeboard.ModeSimulated),
//	    gaugeboard.WithSimulatorBounds(0, 90),
//	    gaugeboard.WithSimulatorSpeed(25),
//	    gaugeboard.WithSampleInterval(500 * time.Millisecond),
//	    gaugeboard.WithPort(9090),
//	)
//
// # Value Sources
//
// The primary value is produced by the selected mode: simulated (a bounded
// triangle-wave oscillation) or static (a fixed number). Additional sources
// can be registered under their own lookup keys:
//
//	board, err := gaugeboard.New(
//	    gaugeboard.WithSource("rpm", gaugeboard.Static(900)),
//	    gaugeboard.WithSource("throttle", gaugeboard.Func(engine.Throttle)),
//	)
//
// Custom sources implement the [Source] interface: a single Read method
// returning the current value. Reads must not block; panics are recovered
// at the boundary and surface as a null value (bulk endpoint) or a server
// error (single-key endpoint).
//
// # HTTP API
//
//   - GET /health: mode and registered lookup keys
//   - GET /api/snapshot: all current values as one JSON object
//   - GET /api/value/{key}: a single value by lookup key
//   - GET /api/sse: Server-Sent Events stream of sampled readings
//   - GET /: embedded gauge dashboard
//
// All API responses carry permissive CORS headers so browser dashboards on
// any origin can poll the values.
//
// # Architecture
//
// GaugeBoard consists of several internal packages (under internal/):
//
//   - internal/simulate: Background triangle-wave value simulator
//   - internal/sampler: Periodic sampling of sources into the store
//   - internal/store: In-memory storage with pub/sub for real-time updates
//   - internal/server: HTTP server with REST API and Server-Sent Events
//   - dashboard: Embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice. The library is designed for single-binary deployment
// using Go's embed directive for static assets.
package gaugeboard
