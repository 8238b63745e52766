/*
Package monitoring provides Prometheus metrics for the desktop service.

It tracks HTTP traffic per route, desktop commands by outcome, session
transitions, running desktops, WebSocket streams and contact form results.
Metrics satisfies the desktop package's Recorder interface.

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
