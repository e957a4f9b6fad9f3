package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes engine counters to Prometheus.
type Recorder struct {
	signalsProcessed *prometheus.CounterVec
	signalsFailed    *prometheus.CounterVec
	recoveryReplayed prometheus.Counter
	batchDuration    prometheus.Histogram
}

// New creates a Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		signalsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecap_signals_processed_total",
				Help: "Total number of signals executed",
			},
			[]string{"window"},
		),
		signalsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecap_signals_failed_total",
				Help: "Total number of signal executions that failed",
			},
			[]string{"window"},
		),
		recoveryReplayed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tradecap_recovery_signals_replayed_total",
				Help: "Total number of missed signals replayed by recovery",
			},
		),
		batchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradecap_batch_duration_seconds",
				Help:    "Duration of batch window executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordProcessed records a successfully executed signal for a window label.
func (r *Recorder) RecordProcessed(window string) {
	r.signalsProcessed.WithLabelValues(window).Inc()
}

// RecordFailed records a failed signal execution for a window label.
func (r *Recorder) RecordFailed(window string) {
	r.signalsFailed.WithLabelValues(window).Inc()
}

// RecordRecovered records a missed signal replayed by recovery.
func (r *Recorder) RecordRecovered() {
	r.recoveryReplayed.Inc()
}

// ObserveBatchDuration records how long a window execution took.
func (r *Recorder) ObserveBatchDuration(seconds float64) {
	r.batchDuration.Observe(seconds)
}
