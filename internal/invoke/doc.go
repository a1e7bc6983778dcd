// Package invoke turns a declarative endpoint definition plus MCP call
// arguments into a concrete outbound HTTP request and executes it.
//
// Compile handles path substitution ({name} and :name styles), query string
// assembly, upstream authentication (bearer, api key in header or query,
// basic), static header merging, and body construction. Caller executes the
// compiled request with a per-endpoint timeout hint, surfacing non-2xx
// responses as UpstreamError and decode failures as ErrDecodeResponse.
package invoke
