// ABOUTME: Package doc for the admin API
// ABOUTME: Documents the management surface and its auth model

// Package admin implements the bridge management API.
//
// Every route lives under /api/ and requires a JWT bearer token signed
// with the configured jwt_secret. The surface covers bridge CRUD, access
// token issuance and revocation, event log inspection, and an HTML
// documentation view of a bridge's endpoints.
//
// Access token values are returned exactly once, in the creation
// response; listings carry a redacted form.
package admin
