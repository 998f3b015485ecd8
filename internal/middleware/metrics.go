package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ActiveWebSockets tracks the number of currently open WebSocket connections.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "websocket_active_connections",
	Help: "Number of currently active WebSocket connections",
})

// InitMetrics creates the Prometheus middleware for HTTP request metrics.
// The returned instance is registered on the app by the server and exposes /metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
