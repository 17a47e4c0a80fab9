package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Counter: Total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gomediaserver_http_requests_total",
			Help: "The total number of processed HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Histogram: Response time
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gomediaserver_http_request_duration_seconds",
			Help:    "The latency of the HTTP requests",
			Buckets: prometheus.DefBuckets, // .005s to 10s
		},
		[]string{"method", "path"},
	)

	// Gauge: Active Streams (Goes up and down)
	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gomediaserver_active_streams_current",
			Help: "The current number of active media streams",
		},
	)

	// Histogram: how long a full filesystem scan of a volume takes.
	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gomediaserver_scan_duration_seconds",
			Help:    "Duration of a volume scan from start to completion",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms..~3.4min
		},
		[]string{"volume_id"},
	)

	// Gauge: number of objects currently held in the catalog store.
	CatalogObjectsCurrent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gomediaserver_catalog_objects_current",
			Help: "The current number of objects (containers and items) in the catalog",
		},
	)

	// Counter: SOAP actions dispatched, by service and action name.
	SOAPActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gomediaserver_soap_actions_total",
			Help: "The total number of SOAP actions dispatched, by service and action",
		},
		[]string{"service", "action", "status"},
	)
)
