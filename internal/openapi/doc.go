// Package openapi synthesizes readable content for the well-known
// openapi:// resource URIs a bridge can expose: a generated OpenAPI 3.0
// document, a Markdown endpoint summary, and per-schema stubs.
package openapi
