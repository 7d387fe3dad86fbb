package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. HTTP Requests Total (Counter)
	// Counts how many requests arrive, labeled by method, path, and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grafite_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"}, // Labels
	)

	// 2. HTTP Request Duration (Histogram)
	// Measures server response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "grafite_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			// Custom buckets covering sub-millisecond mutations up to long analytics runs
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// 3. Graph size gauges, refreshed from the engine after each mutation.
	GraphNodesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grafite_graph_nodes_total",
		Help: "Number of registered graph nodes",
	})

	GraphEdgesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grafite_graph_edges_total",
		Help: "Number of distinct directed edges in the mutation store",
	})

	SnapshotVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grafite_snapshot_version",
		Help: "Version stamp of the published adjacency snapshot",
	})

	// 4. Analytics tasks currently executing.
	TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "grafite_analytics_tasks_active",
		Help: "Number of analytics tasks currently running",
	})
)
