/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the gateway,
tracking HTTP requests, file operations and bulk rename tasks. Each Metrics
value owns its registry so several collectors can coexist in one process.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "delete")
	err := store.Remove(ctx, name)
	timer.StopErr(err)
*/
package monitoring
