package middlewares

import "github.com/dropDatabas3/userdash/internal/metrics"

// WithMetrics instrumenta con Prometheus.
func WithMetrics() Middleware {
	return metrics.WithMetrics
}
