package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search, backup and assistant Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedex",
			Name:      "search_requests_total",
			Help:      "Total number of search queries",
		},
		[]string{"entity_type"},
	)

	SearchResultsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coursedex",
			Name:      "search_results_returned",
			Help:      "Distribution of pre-pagination result counts",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"entity_type"},
	)

	BackupOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedex",
			Name:      "backup_operations_total",
			Help:      "Total backup operations by kind and outcome",
		},
		[]string{"operation", "status"},
	)

	BackupSizeBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "coursedex",
			Name:      "backup_size_bytes",
			Help:      "Serialized backup payload size in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	AssistantRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedex",
			Name:      "assistant_requests_total",
			Help:      "Total number of assistant chat requests",
		},
		[]string{"provider", "model", "status"},
	)

	AssistantTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coursedex",
			Name:      "assistant_tokens_total",
			Help:      "Total assistant tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)
)

var opsMetricsRegistered bool

// RegisterOpsMetrics registers the domain metrics. Must be called once from main.
func RegisterOpsMetrics() {
	if opsMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResultsReturned)
	prometheus.MustRegister(BackupOperationsTotal)
	prometheus.MustRegister(BackupSizeBytes)
	prometheus.MustRegister(AssistantRequestsTotal)
	prometheus.MustRegister(AssistantTokensTotal)
	opsMetricsRegistered = true
}
