package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-seoform/pkg/metrics"
)

func TestCollector_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	require.NoError(t, err)

	collector.FieldOperation("attach", metrics.ResultApplied)
	collector.FieldOperation("attach", metrics.ResultNoop)
	collector.FieldOperation("attach", metrics.ResultNoop)
	collector.Projection(metrics.ResultSkipped)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 2)

	count, err := testutil.GatherAndCount(reg, "seoform_field_operations_total", "seoform_projections_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestCollector_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	require.Error(t, err)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var collector *metrics.Collector
	collector.FieldOperation("attach", metrics.ResultApplied)
	collector.Projection(metrics.ResultApplied)
}
