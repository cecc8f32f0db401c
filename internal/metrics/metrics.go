package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizeRuns counts engine invocations by kind and result
	OptimizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_runs_total", Help: "Optimizer runs by kind."},
		[]string{"kind"},
	)
	// OptimizeIterations tracks iterations consumed per run
	OptimizeIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_iterations", Help: "Tabu search iterations per run.", Buckets: []float64{10, 25, 50, 100, 200, 400, 800}},
	)
	// OptimizeDuration tracks wall time per engine run in seconds
	OptimizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Engine run duration in seconds.", Buckets: prometheus.DefBuckets},
	)
	// Moves counts move outcomes by type
	Moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_moves_total", Help: "Neighborhood moves by type and outcome."},
		[]string{"type", "outcome"},
	)
	// DeliveredUnits counts units delivered through simulation runs
	DeliveredUnits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "sim_delivered_units_total", Help: "Units delivered across simulation runs."},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
	// WebhookLatency tracks webhook delivery latencies in milliseconds
	WebhookLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "webhook_delivery_latency_ms", Help: "Webhook delivery latency in ms.", Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000}},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeRuns)
		Registry.MustRegister(OptimizeIterations)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(Moves)
		Registry.MustRegister(DeliveredUnits)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
