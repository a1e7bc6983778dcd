// ABOUTME: Package doc for admin API authentication
// ABOUTME: Documents the JWT token scheme and middleware

// Package auth provides JWT authentication for the admin API.
//
// Tokens are signed with HS256 using the configured jwt_secret and carry
// the caller in the "sub" claim. Middleware validates the bearer token on
// every admin request and makes the subject available via
// SubjectFromContext.
//
// Bridge-level access tokens are a separate concern handled by the access
// package; this package guards only the management surface.
package auth
