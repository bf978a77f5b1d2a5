// Package observability provides logging, metrics and health checks.
//
// # Overview
//
// This package wires the three operational concerns every deployment
// needs: a configured logrus logger, Prometheus collectors with an HTTP
// instrumentation middleware, and liveness/readiness probes backed by
// PostgreSQL and Redis pings.
//
// # Key Components
//
//   - NewLogger: level- and format-configured *logrus.Logger
//   - Metrics / HTTPMetricsMiddleware: request counters and latency
//     histograms plus login outcome counters
//   - HealthChecker: /healthz and /healthz/ready handlers for the
//     separate health port
package observability
