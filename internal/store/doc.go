// Package store provides persistent storage for the gateway using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces consumed by different parts of the gateway:
//
//   - BridgeStore: Bridge resolution for the dispatcher (enabled-filtered
//     lookups by id or slug, lazy resource/prompt fetches)
//   - TokenStore: Access token lookup and lastUsedAt updates for the guard
//   - LogStore: Fire-and-forget bridge event log sink
//   - AdminStore: Bridge and token CRUD behind the management API
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries. MockStore is an
// in-memory implementation for tests.
//
// # Data Models
//
//   - Bridge: A configured mapping from one REST API to an MCP tool surface,
//     including outbound auth, static headers, endpoints, and any explicitly
//     authored tools/resources/prompts
//   - Endpoint: One declared REST operation (method, path template,
//     parameters, request body schema)
//   - AccessToken: Bridge-scoped inbound credential
//   - LogEntry: Structured bridge event log record
//
// Endpoint, tool, resource and prompt definitions are stored as JSON blob
// columns on the bridge row: they are only ever read and written as a unit
// with their bridge, and the blobs pass through the gateway unmodified.
package store
