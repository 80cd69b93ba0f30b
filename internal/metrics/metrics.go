// Package metrics defines the Prometheus metrics exported by filegate.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "filegate"

// registerOnce ensures Register() is idempotent.
var registerOnce sync.Once

var (
	// RequestsTotal counts gateway requests by operation and response status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Gateway requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	// GrantsIssuedTotal counts presigned URLs handed out.
	GrantsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grants_issued_total",
			Help:      "Presigned URLs issued by operation",
		},
		[]string{"operation"},
	)

	// QuotaRejectionsTotal counts uploads denied by the quota check.
	QuotaRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Upload grants refused because the quota ceiling would be exceeded",
		},
	)

	// QuotaScanDuration observes how long a usage scan of the bucket takes.
	QuotaScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quota_scan_duration_seconds",
			Help:      "Latency of the listing scan used to compute storage usage",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// StorageUsageBytes is the bucket usage seen by the most recent bucket-scoped scan.
	StorageUsageBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_usage_bytes",
			Help:      "Bucket-wide usage computed by the most recent quota scan",
		},
	)

	// HTTPRequestDuration observes front door latency by route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Register adds all collectors to reg. Safe to call more than once;
// only the first call registers.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			RequestsTotal,
			GrantsIssuedTotal,
			QuotaRejectionsTotal,
			QuotaScanDuration,
			StorageUsageBytes,
			HTTPRequestDuration,
		)
	})
}

// ObserveRequest records one handled gateway request.
func ObserveRequest(operation string, status int) {
	RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
}

// ObserveGrant records one issued presigned URL.
func ObserveGrant(operation string) {
	GrantsIssuedTotal.WithLabelValues(operation).Inc()
}

// knownPaths bounds the label cardinality of HTTPRequestDuration.
var knownPaths = map[string]bool{
	"/upload":              true,
	"/generate-upload-url": true,
	"/download":            true,
	"/list":                true,
	"/delete":              true,
	"/healthz":             true,
	"/readyz":              true,
	"/metrics":             true,
}

// NormalizePath maps a request path to a bounded label value.
func NormalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}
