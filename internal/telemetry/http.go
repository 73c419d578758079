package telemetry

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "crayons_engine_operations_total",
	Help: "Engine operations by name and outcome.",
}, []string{"op", "result"})

// CountOperation records one engine operation for the /metrics endpoint.
func CountOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	operations.WithLabelValues(op, result).Inc()
}

// RequestLogger logs every HTTP request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.InfoContext(c.Request.Context(), "http: request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
