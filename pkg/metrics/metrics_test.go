package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValues flattens gathered counters into name{label} keys
func counterValues(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetValue() + "}"
			}
			values[key] = m.GetCounter().GetValue()
		}
	}
	return values
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ReconcileRun("success")
	m.ReconcileRun("success")
	m.EpisodeChanges("added", 3)
	m.EpisodeChanges("retired", 0)
	m.DuplicateGroups("resolved", 2)
	m.Recordings("flagged", 1)
	m.MergeRun("refused")

	values := counterValues(t, reg)
	assert.Equal(t, float64(2), values["catalogz_series_reconcile_total{success}"])
	assert.Equal(t, float64(3), values["catalogz_episode_changes_total{added}"])
	assert.Equal(t, float64(2), values["catalogz_duplicate_groups_total{resolved}"])
	assert.Equal(t, float64(1), values["catalogz_recordings_total{flagged}"])
	assert.Equal(t, float64(1), values["catalogz_series_merge_total{refused}"])

	_, ok := values["catalogz_episode_changes_total{retired}"]
	assert.False(t, ok, "zero adds should not create a series")
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReconcileRun("success")
		m.EpisodeChanges("added", 1)
		m.DuplicateGroups("resolved", 1)
		m.Recordings("relinked", 1)
		m.MergeRun("success")
	})
}
