package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amoylab/catalog/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics() *Metrics {
	return New(config.MetricsConfig{Namespace: "catalog", Buckets: []float64{0.1, 1}})
}

func TestMetrics_DecisionAndApproval(t *testing.T) {
	m := newTestMetrics()
	m.Decision("approve", false, "tenant_mismatch")
	m.Decision("approve", false, "tenant_mismatch")
	m.Decision("create", true, "allowed")
	m.Approval(ApprovalApproved)
	m.Approval(ApprovalConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisionCnt.WithLabelValues("approve", "deny", "tenant_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisionCnt.WithLabelValues("create", "allow", "allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.approvalCnt.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.approvalCnt.WithLabelValues("conflict")))
}

func TestMetrics_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products/7", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues("GET", "/api/products/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpReqCnt.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInfl.WithLabelValues("/api/products/:id")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "catalog_http_requests_total")
	assert.NotNil(t, m.Registry())
}
