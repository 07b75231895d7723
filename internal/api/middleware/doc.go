// Package middleware provides the gin middleware shared by every route:
// CORS headers and per-client rate limiting.
package middleware
