// Package server assembles the gin router, middleware chain and gateway
// from configuration and owns the http.Server lifecycle.
package server
