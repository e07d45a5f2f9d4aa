package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Batch outcomes recorded by the ingestion pipeline.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
)

var (
	ingestBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantdesk_ingest_batches_total",
		Help: "Bulk ingestion batches by entity and outcome",
	}, []string{"entity", "outcome"})

	ingestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantdesk_ingest_rows_total",
		Help: "Rows committed by bulk ingestion",
	}, []string{"entity"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tenantdesk_http_requests_total",
		Help: "Total number of HTTP requests processed",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tenantdesk_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// BatchCommitted records a committed batch of n rows.
func BatchCommitted(entity string, n int) {
	ingestBatches.WithLabelValues(entity, OutcomeCommitted).Inc()
	ingestRows.WithLabelValues(entity).Add(float64(n))
}

func BatchRolledBack(entity string) {
	ingestBatches.WithLabelValues(entity, OutcomeRolledBack).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched pattern, not the raw path.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
