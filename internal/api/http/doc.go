// Package http adapts gateway operations to gin handlers.
//
// Status mapping: validation failures are 400 with a plain-text reason,
// storage failures are 500 with the body "Internal Server Error" and the
// underlying error is only logged.
package http
