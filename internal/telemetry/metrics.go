// Package telemetry exposes synchronization counters as Prometheus metrics.
package telemetry

import (
	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/domain"
	portsevents "github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/core/ports/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fxrates"

// SyncMetrics records synchronization outcomes.
type SyncMetrics struct {
	SyncRunsTotal          *prometheus.CounterVec
	SyncDuration           prometheus.Histogram
	SnapshotsAppendedTotal *prometheus.CounterVec
	RecordsSkippedTotal    *prometheus.CounterVec
	LastSuccessfulSync     prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics on reg. Pass prometheus.DefaultRegisterer to expose
// them on the default /metrics handler.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	factory := promauto.With(reg)
	return &SyncMetrics{
		SyncRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Number of finished synchronization cycles by result",
			},
			[]string{"result"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of synchronization cycles in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms .. ~2m
			},
		),
		SnapshotsAppendedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_appended_total",
				Help:      "Number of rate snapshots stored by regime",
			},
			[]string{"regime"},
		),
		RecordsSkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_skipped_total",
				Help:      "Number of upstream records left out during reconciliation by reason",
			},
			[]string{"reason"},
		),
		LastSuccessfulSync: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_successful_sync_timestamp_seconds",
				Help:      "Unix time at which the last successful synchronization started",
			},
		),
	}
}

var _ portsevents.SyncObserver = (*SyncMetrics)(nil)

// SyncFinished records one finished cycle.
func (m *SyncMetrics) SyncFinished(report domain.SyncReport) {
	result := "failure"
	if report.Succeeded {
		result = "success"
		m.LastSuccessfulSync.Set(float64(report.StartedAt.Unix()))
	}
	m.SyncRunsTotal.WithLabelValues(result).Inc()
	if !report.FinishedAt.IsZero() {
		m.SyncDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
}

// SnapshotAppended counts one stored snapshot.
func (m *SyncMetrics) SnapshotAppended(regime domain.Regime) {
	m.SnapshotsAppendedTotal.WithLabelValues(regime.String()).Inc()
}

// RecordSkipped counts one record left out for reason.
func (m *SyncMetrics) RecordSkipped(reason domain.SkipReason) {
	m.RecordsSkippedTotal.WithLabelValues(string(reason)).Inc()
}
