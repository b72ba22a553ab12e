// Package server provides the HTTP server for the GaugeBoard dashboard and API.
//
// This package is internal to GaugeBoard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML dashboard at "/"
//   - Health: JSON endpoint at "/health" reporting mode and registered keys
//   - Snapshot: JSON endpoint at "/api/snapshot" with every source's value
//   - Single value: JSON endpoint at "/api/value/{key}" for one source
//   - Server-Sent Events: Real-time reading updates at "/api/sse"
//
// All API responses carry permissive CORS headers so browser dashboards on
// other origins can poll the values directly.
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the gaugeboard library should not need to interact with this
// package directly. The server is started automatically by Board.Start.
package server
