package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so routers built in tests do not collide.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

// NewMetrics registers:
//   - instadm_http_requests_total{method,route,status}
//   - instadm_http_request_duration_seconds{method,route}
//   - instadm_rate_limited_total{scope}
//   - instadm_notifications_total{result}
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instadm_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "instadm_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instadm_rate_limited_total",
			Help: "Requests rejected by a rate limiter",
		}, []string{"scope"}), // "tenant" or "ip"
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "instadm_notifications_total",
			Help: "Operator notification attempts by result",
		}, []string{"result"}),
	}
}

// ObserveNotification matches infrastructure.Dispatcher's OnResult hook.
func (m *Metrics) ObserveNotification(ok bool) {
	result := "failed"
	if ok {
		result = "sent"
	}
	m.Notifications.WithLabelValues(result).Inc()
}

func (m *Metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ginHandler() gin.HandlerFunc {
	return gin.WrapH(m.Handler())
}
