package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type handlerMetrics struct {
	registry          *prometheus.Registry
	consumptions      *prometheus.CounterVec
	adminAuthFailures prometheus.Counter
}

// newHandlerMetrics uses a private registry so several handlers (tests) can
// coexist in one process.
func newHandlerMetrics() *handlerMetrics {
	registry := prometheus.NewRegistry()
	consumptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "drinktab_consumptions_recorded_total",
		Help: "Consumption records created, by product id.",
	}, []string{"product_id"})
	adminAuthFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "drinktab_admin_auth_failures_total",
		Help: "Rejected admin basic auth attempts.",
	})

	registry.MustRegister(
		consumptions,
		adminAuthFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &handlerMetrics{
		registry:          registry,
		consumptions:      consumptions,
		adminAuthFailures: adminAuthFailures,
	}
}

func (handler *Handler) Metrics() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(handler.metrics.registry, promhttp.HandlerOpts{}))
}
