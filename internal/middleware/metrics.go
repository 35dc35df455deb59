package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts login attempts by outcome ("success", "failure").
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_auth_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// GraphMutations counts follow and like edge changes by operation.
	GraphMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_graph_mutations_total",
		Help: "Total number of social graph mutations by operation",
	}, []string{"operation"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})
)

var (
	promOnce    sync.Once
	httpMetrics *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP request metrics collector for the named service.
// The collector registers with the default registry, so it is created once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}

// MetricsMiddleware records request counts and latencies for every route.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
