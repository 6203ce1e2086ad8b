package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	frameScreens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibesdrop",
			Name:      "frame_screens_total",
			Help:      "Frame responses by screen.",
		},
		[]string{"screen"},
	)

	optIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibesdrop",
			Name:      "optins_total",
			Help:      "Opt-in attempts by result.",
		},
		[]string{"result"},
	)

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibesdrop",
			Name:      "webhook_events_total",
			Help:      "Inbound webhook calls by result.",
		},
		[]string{"result"},
	)

	upstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibesdrop",
			Name:      "upstream_errors_total",
			Help:      "Failed calls to external services.",
		},
		[]string{"service"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vibesdrop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vibesdrop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		frameScreens,
		optIns,
		webhookEvents,
		upstreamErrors,
		httpRequests,
		httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Instrument records count and latency per matched route.
func Instrument() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordScreen counts one frame response.
func RecordScreen(screen string) {
	frameScreens.WithLabelValues(screen).Inc()
}

// RecordOptIn counts one opt-in write ("recorded" or "failed").
func RecordOptIn(result string) {
	optIns.WithLabelValues(result).Inc()
}

// RecordWebhook counts one webhook call ("stored", "rejected", "invalid", "failed").
func RecordWebhook(result string) {
	webhookEvents.WithLabelValues(result).Inc()
}

// RecordUpstreamError counts a failed call to "hub", "neynar" or "redis".
func RecordUpstreamError(service string) {
	upstreamErrors.WithLabelValues(service).Inc()
}
