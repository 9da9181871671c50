package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	SyncRequests.WithLabelValues(OutcomeOK).Inc()
	RateLimitRejected.WithLabelValues("sync").Inc()
	SyncMergeDuration.Observe(0.01)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"printstudio_sync_requests_total",
		"printstudio_sync_merge_duration_seconds",
		"printstudio_rate_limit_rejected_total",
	} {
		require.True(t, names[want], "missing %s", want)
	}
	require.Equal(t, 1, testutil.CollectAndCount(SyncMergeDuration))
}

func TestRegisterCollectorsTwicePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)
	require.Panics(t, func() { RegisterCollectors(reg) })
}
