package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/amoylab/catalog/internal/common/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Approval outcomes
const (
	ApprovalApproved = "approved"
	ApprovalConflict = "conflict"
	ApprovalDenied   = "denied"
	ApprovalError    = "error"
)

type Metrics struct {
	registry    *prometheus.Registry
	namespace   string
	httpReqCnt  *prometheus.CounterVec
	httpDur     *prometheus.HistogramVec
	httpInfl    *prometheus.GaugeVec
	decisionCnt *prometheus.CounterVec
	approvalCnt *prometheus.CounterVec
}

func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: ns, Name: "http_request_duration_seconds", Buckets: cfg.Buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: ns, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	decisionCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "authz_decisions_total"}, []string{"action", "decision", "reason"})
	approvalCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "product_approvals_total"}, []string{"outcome"})
	r.MustRegister(decisionCnt, approvalCnt)

	return &Metrics{
		registry:    r,
		namespace:   ns,
		httpReqCnt:  httpReqCnt,
		httpDur:     httpDur,
		httpInfl:    httpInfl,
		decisionCnt: decisionCnt,
		approvalCnt: approvalCnt,
	}
}

// Decision counts one authorization decision
func (m *Metrics) Decision(action string, allowed bool, reason string) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	m.decisionCnt.WithLabelValues(action, decision, reason).Inc()
}

// Approval counts one approve attempt by outcome
func (m *Metrics) Approval(outcome string) {
	m.approvalCnt.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
