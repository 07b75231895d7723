// Package tracing tags each HTTP request with an ID and writes a
// structured access log line for it.
//
// The ID is taken from the X-Request-ID header when present, otherwise a
// UUID is generated. Handlers read it with RequestID(ctx) to correlate
// their own log lines.
package tracing
