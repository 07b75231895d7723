// Package logging provides structured logging using uber/zap.
//
// Two modes are supported: JSON output for production and colored console
// output for development (LOG_DEV=true).
//
// Example Usage:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Server starting", zap.String("port", "3000"))
//	logger.Error("Failed to read index page", zap.Error(err))
package logging
