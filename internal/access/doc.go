// Package access enforces a bridge's inbound access policy before any
// protocol handler runs. Credentials come from Authorization (Bearer or
// ApiKey scheme) or X-API-Key headers; authentication strategies run in a
// fixed priority order with the legacy shared key first and the access
// token store second. Datastore failures are surfaced distinctly from
// rejections so they can escalate to internal errors.
package access
