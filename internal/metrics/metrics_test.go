package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRouting(t *testing.T) {
	before := testutil.ToFloat64(routingDecisionsTotal.WithLabelValues("inventory"))
	RecordRouting("inventory", 2)
	RecordRouting("inventory", 1)
	assert.Equal(t, before+2, testutil.ToFloat64(routingDecisionsTotal.WithLabelValues("inventory")))
}

func TestRecordReportBuild(t *testing.T) {
	before := testutil.ToFloat64(reportBuildsTotal.WithLabelValues("financial", "store"))
	RecordReportBuild("financial", "store", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(reportBuildsTotal.WithLabelValues("financial", "store")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "2xx"))
	RecordHTTPRequest("GET", "/health", http.StatusOK, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/health", "2xx")))
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 503: "5xx", 0: "unknown", 999: "unknown"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status), "status %d", status)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordRouting("sales", 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `erp_routing_decisions_total{domain="sales"}`)
}
