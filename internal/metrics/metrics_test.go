package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestServerMetrics_Handler(t *testing.T) {
	m := NewServerMetrics("api")
	m.Requests.WithLabelValues("GET", "/v1/products", "200").Inc()
	m.LatencyMS.WithLabelValues("GET", "/v1/products").Observe(12)
	m.Orders.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `storefront_api_http_requests_total{method="GET",route="/v1/products",status="200"} 1`)
	assert.Contains(t, body, "storefront_api_orders_placed_total 1")
	assert.Contains(t, body, "go_goroutines")
}

func TestNewServerMetrics_Independent(t *testing.T) {
	a := NewServerMetrics("api")
	b := NewServerMetrics("api")

	a.Orders.Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.Orders))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Orders))
}
