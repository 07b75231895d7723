// Package main is the entry point for the HTML file gateway.
//
// The server exposes endpoints that read, generate, update, rename and
// delete HTML files under a root directory:
//
//	GET    /                        index page
//	GET    /count-img-tags          <img> count per file in the HTML directory
//	GET    /generate-basic-html     write and return a fixed page
//	GET    /generate-multiple-html  write file_1.html..file_N.html
//	PUT    /update-html             keyword replace in the about page
//	DELETE /delete-html             remove the obsolete page
//	PUT    /rename-single-file      rename the about page
//	PUT    /rename-multiple-files   timestamp-rename the HTML directory
//	GET    /rename-tasks/:id        bulk rename progress
//	GET    /health, /metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	PORT=3000 ROOT_DIR=/srv/site ./server
//
//	# Development mode (colored logs, debug level)
//	./server -dev -root ./site
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, waiting for bulk renames
package main
