// Package gateway implements the file operations behind the HTTP API.
//
// Every operation is independent: it performs one storage call (or one
// listing followed by per-file calls) and returns. The gateway holds no
// per-request state; the only long-lived objects are bulk rename tasks,
// which outlive the request that started them and are tracked so callers
// can observe or wait for completion.
//
// Concurrent requests touching the same file are not coordinated. An
// update racing a delete of the same page may fail or resurrect the file.
package gateway
