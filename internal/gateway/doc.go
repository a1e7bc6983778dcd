// ABOUTME: Package doc for the gateway orchestrator
// ABOUTME: Documents component wiring and lifecycle

// Package gateway assembles the server from its parts: the SQLite store,
// the access guard, the upstream caller, the MCP endpoint, and the admin
// API, all served from one HTTP listener.
//
// New wires everything from a loaded config; Run serves until the context
// is canceled and then shuts down the HTTP server and store with a
// bounded grace period.
//
// Routes:
//
//	/health            liveness
//	/health/ready      store readiness
//	/mcp/<id-or-slug>  MCP JSON-RPC endpoint
//	/api/...           admin API (JWT)
package gateway
