package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes application metrics through Prometheus.
type Recorder struct {
	predictionsTotal *prometheus.CounterVec
	barsIngested     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	opLatency        *prometheus.HistogramVec
}

// NewRecorder creates and registers the application metric vectors.
func NewRecorder() *Recorder {
	return &Recorder{
		predictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_predictions_total",
				Help: "Predictions served, by symbol and direction",
			},
			[]string{"symbol", "direction"},
		),
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_bars_ingested_total",
				Help: "Daily bars ingested, by backend and symbol",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockcast_errors_total",
				Help: "Application errors by kind",
			},
			[]string{"kind"},
		),
		opLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockcast_operation_seconds",
				Help:    "Operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// RecordPrediction counts a served prediction.
func (r *Recorder) RecordPrediction(symbol, direction string) {
	r.predictionsTotal.WithLabelValues(symbol, direction).Inc()
}

// RecordBarsIngested counts stored daily bars.
func (r *Recorder) RecordBarsIngested(backend, symbol string, n int) {
	if n <= 0 {
		return
	}
	r.barsIngested.WithLabelValues(backend, symbol).Add(float64(n))
}

// RecordError counts an application error by kind.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency observes operation duration in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.opLatency.WithLabelValues(op).Observe(seconds)
}
