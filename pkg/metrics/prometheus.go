package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	windows          prometheus.Histogram
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barpull_upstream_requests_total",
				Help: "Total number of requests issued to the market-data provider",
			},
			[]string{"endpoint"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		windows: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "barpull_retrieval_windows",
				Help:    "Number of provider windows fetched per retrieval",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
			},
		),
	}
}

// RecordUpstreamRequest counts one provider round-trip per endpoint.
func (r *Recorder) RecordUpstreamRequest(endpoint string) {
	r.upstreamRequests.WithLabelValues(endpoint).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordWindows records how many windows one retrieval fanned out to.
func (r *Recorder) RecordWindows(n int) {
	r.windows.Observe(float64(n))
}
