// Package toolgen derives MCP tool definitions from endpoint declarations:
// canonical tool names from (method, path) pairs and JSON-Schema-shaped
// input schemas from declared parameters and request bodies.
package toolgen
