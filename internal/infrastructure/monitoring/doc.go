/*
Package monitoring provides Prometheus metrics for the viewer service.

# Overview

Collectors are registered on an explicit prometheus.Registerer so tests can
build as many Metrics values as they like.

# Metrics

  - HTTP requests (count, latency, response size), labelled by route template
  - Content source calls (count by status, latency)
  - Sandbox composes, presents by outcome, releases, live frames
  - Headless preflight duration and content failures
  - Uptime

Metrics also satisfies sandbox.Observer so slots report present outcomes
without importing this package.

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	timer := monitoring.NewTimer(metrics, "list_courses")
	courses, err := source.ListCourses(ctx)
	timer.Stop(err)
*/
package monitoring
