// ABOUTME: Package doc for the MCP gateway endpoint
// ABOUTME: Documents the JSON-RPC dispatch pipeline and its error mapping

// Package mcp serves the Model Context Protocol endpoint for every bridge.
//
// A single Server handles POST /mcp/<id-or-slug>. Each request walks a
// fixed pipeline: resolve the bridge, parse the JSON-RPC envelope,
// authenticate against the bridge's access policy, and route to the
// protocol method handler. Every outcome, including panics, is reported
// as a JSON-RPC 2.0 response; auth rejections additionally carry HTTP 401
// and code -32401.
//
// Tools are either the bridge's explicit tool list or derived one per
// endpoint, never both. Resource content is synthesized at read time from
// endpoint metadata; prompts render as a single user message.
package mcp
