package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var Tracer = otel.Tracer("tangle")

// Metrics definitions
var (
	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tangle_build_seconds",
		Help:    "Time spent building a dependency graph.",
		Buckets: prometheus.DefBuckets,
	})

	FilesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangle_files_scanned_total",
		Help: "Total number of candidate files discovered by the scanner.",
	})

	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangle_graph_nodes_total",
		Help: "Number of nodes in the most recently built graph.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangle_graph_edges_total",
		Help: "Number of edges in the most recently built graph.",
	})

	CircularEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tangle_graph_circular_edges_total",
		Help: "Number of edges flagged circular in the most recently built graph.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tangle_http_requests_total",
		Help: "HTTP requests handled by the graph API.",
	}, []string{"route", "code"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tangle_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
