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

	// PlansTotal counts dispatch plans by outcome (ok, invalid, unreachable, error)
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_plans_total", Help: "Dispatch plan requests by outcome."},
		[]string{"outcome"},
	)
	// PlanDuration tracks end-to-end planning time in seconds
	PlanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "dispatch_plan_duration_seconds", Help: "Dispatch planning duration in seconds.", Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30}},
	)
	// PartitionsEvaluated counts partitions examined across all plans
	PartitionsEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "dispatch_partitions_evaluated_total", Help: "Fleet partitions evaluated by the planner."},
	)
	// OracleCacheHits / OracleCacheMisses expose the distance cache behavior
	OracleCacheHits = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "dispatch_oracle_cache_hits", Help: "Distance oracle cache hits since start."},
	)
	OracleCacheMisses = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "dispatch_oracle_cache_misses", Help: "Distance oracle cache misses since start."},
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

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(PlansTotal)
		Registry.MustRegister(PlanDuration)
		Registry.MustRegister(PartitionsEvaluated)
		Registry.MustRegister(OracleCacheHits)
		Registry.MustRegister(OracleCacheMisses)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(WebhookLatency)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
