package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.StockReported(models.StockStatusLowStock)
	m.StockReported(models.StockStatusLowStock)
	m.StockReported(models.StockStatusAvailable)
	m.NearbyQuery(3*time.Millisecond, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockReports.WithLabelValues("LOW_STOCK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockReports.WithLabelValues("AVAILABLE")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.NearbyResults))
}

func TestObserveHTTPAndHandler(t *testing.T) {
	m := New(nil)
	m.ObserveHTTP(http.MethodGet, "/api/v1/hospitals/:id", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/hospitals/:id", "404")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/api/v1/hospitals/:id",status="404"} 1`))
}
