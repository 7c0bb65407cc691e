package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalogz"

// Metrics holds the reconciliation counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reconcileRuns   *prometheus.CounterVec
	episodeChanges  *prometheus.CounterVec
	duplicateGroups *prometheus.CounterVec
	recordings      *prometheus.CounterVec
	mergeRuns       *prometheus.CounterVec
}

// New creates the counters and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_reconcile_total",
			Help:      "Series update passes by result.",
		}, []string{"result"}),
		episodeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episode_changes_total",
			Help:      "Episode level outcomes of series update passes.",
		}, []string{"change"}),
		duplicateGroups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_groups_total",
			Help:      "Duplicate episode groups seen by the resolver by outcome.",
		}, []string{"outcome"}),
		recordings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_total",
			Help:      "Recording edges touched by the resolver and merger.",
		}, []string{"action"}),
		mergeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_merge_total",
			Help:      "Series merges by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.reconcileRuns, m.episodeChanges, m.duplicateGroups, m.recordings, m.mergeRuns)
	return m
}

func (m *Metrics) ReconcileRun(result string) {
	if m == nil {
		return
	}
	m.reconcileRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) EpisodeChanges(change string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.episodeChanges.WithLabelValues(change).Add(float64(n))
}

func (m *Metrics) DuplicateGroups(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.duplicateGroups.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) Recordings(action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recordings.WithLabelValues(action).Add(float64(n))
}

func (m *Metrics) MergeRun(result string) {
	if m == nil {
		return
	}
	m.mergeRuns.WithLabelValues(result).Inc()
}
