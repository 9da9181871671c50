package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SyncRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "printstudio", Name: "sync_requests_total", Help: "Draft synchronization requests by outcome."},
		[]string{"outcome"},
	)
	SyncMergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "printstudio", Name: "sync_merge_duration_seconds", Help: "Time spent resolving, merging and storing a draft.", Buckets: prometheus.DefBuckets},
	)
	DraftsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "printstudio", Name: "drafts_swept_total", Help: "Abandoned drafts removed by the sweeper."},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "printstudio", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
		[]string{"limiter"},
	)
)

// Outcome labels for SyncRequests.
const (
	OutcomeOK           = "ok"
	OutcomeUnknownPage  = "unknown_page"
	OutcomeStoreFailure = "store_failure"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SyncRequests)
	reg.MustRegister(SyncMergeDuration)
	reg.MustRegister(DraftsSwept)
	reg.MustRegister(RateLimitRejected)
}
