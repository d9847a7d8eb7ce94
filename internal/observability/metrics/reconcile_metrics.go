package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunOutcomeOK         = "ok"
	RunOutcomeFailed     = "failed"
	RunOutcomeIncomplete = "incomplete"
)

const (
	RecordOutcomeCreated   = "created"
	RecordOutcomeUpdated   = "updated"
	RecordOutcomeUnchanged = "unchanged"
	RecordOutcomeFailed    = "failed"
)

// ReconcileMetrics captures reconciliation run health signals.
type ReconcileMetrics struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	records     *prometheus.CounterVec
	pageRetries *prometheus.CounterVec
}

var (
	reconcileMetricsOnce sync.Once
	reconcileMetrics     *ReconcileMetrics
)

// Reconcile returns the singleton reconciliation metrics registry.
func Reconcile() *ReconcileMetrics {
	reconcileMetricsOnce.Do(func() {
		reconcileMetrics = newReconcileMetrics(prometheus.DefaultRegisterer)
	})
	return reconcileMetrics
}

func newReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	m := &ReconcileMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paysync_reconcile_runs_total",
			Help: "Reconciliation runs by outcome.",
		}, []string{"provider", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paysync_reconcile_run_duration_seconds",
			Help:    "Wall-clock duration of reconciliation runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"provider"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paysync_reconcile_records_total",
			Help: "Reconciled records by outcome.",
		}, []string{"provider", "outcome"}),
		pageRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paysync_provider_page_retries_total",
			Help: "Provider page fetches that needed a retry.",
		}, []string{"provider"}),
	}

	for _, collector := range []prometheus.Collector{m.runs, m.runDuration, m.records, m.pageRetries} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}
	return m
}

func (m *ReconcileMetrics) IncRun(provider, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(provider, outcome).Inc()
}

func (m *ReconcileMetrics) ObserveRunDuration(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *ReconcileMetrics) AddRecords(provider, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.records.WithLabelValues(provider, outcome).Add(float64(n))
}

func (m *ReconcileMetrics) IncPageRetry(provider string) {
	if m == nil {
		return
	}
	m.pageRetries.WithLabelValues(provider).Inc()
}
