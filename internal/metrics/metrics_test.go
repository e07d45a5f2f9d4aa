package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchCounters(t *testing.T) {
	before := testutil.ToFloat64(ingestRows.WithLabelValues("metrics_test"))
	beforeBatches := testutil.ToFloat64(ingestBatches.WithLabelValues("metrics_test", OutcomeCommitted))

	BatchCommitted("metrics_test", 3)
	BatchCommitted("metrics_test", 1)
	BatchRolledBack("metrics_test")

	assert.Equal(t, before+4, testutil.ToFloat64(ingestRows.WithLabelValues("metrics_test")))
	assert.Equal(t, beforeBatches+2, testutil.ToFloat64(ingestBatches.WithLabelValues("metrics_test", OutcomeCommitted)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(ingestBatches.WithLabelValues("metrics_test", OutcomeRolledBack)), 1.0)
}

func TestHandlerExposesCounters(t *testing.T) {
	ObserveRequest(http.MethodGet, "/v1/ping", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenantdesk_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/v1/ping"`)
}
