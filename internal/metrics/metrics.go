// Package metrics exposes Prometheus counters for the report pipeline.
package metrics

import (
	"net/http" // Handler
	"strconv"  // Status labels
	"time"     // Durations

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Collectors
	"github.com/prometheus/client_golang/prometheus/promhttp" // Exposition handler
)

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "denied"
)

// Metrics owns a private registry so several instances can coexist in tests
type Metrics struct {
	registry        *prometheus.Registry
	Logins          *prometheus.CounterVec   // Login attempts by result
	Uploads         *prometheus.CounterVec   // Uploads by result
	Downloads       *prometheus.CounterVec   // Downloads by result
	Notifications   *prometheus.CounterVec   // Notification mails by result
	RequestDuration *prometheus.HistogramVec // HTTP latency by route
}

// New registers every collector under namespace
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "report_portal"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "logins_total", Help: "Login attempts by result.",
		}, []string{"result"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "report_uploads_total", Help: "Report uploads by result.",
		}, []string{"result"}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "report_downloads_total", Help: "Report downloads by result.",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifications_total", Help: "Report notification mails by result.",
		}, []string{"result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(m.Logins, m.Uploads, m.Downloads, m.Notifications, m.RequestDuration)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncLogin counts a login attempt; safe on a nil receiver
func (m *Metrics) IncLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

// IncUpload counts an upload; safe on a nil receiver
func (m *Metrics) IncUpload(result string) {
	if m != nil {
		m.Uploads.WithLabelValues(result).Inc()
	}
}

// IncDownload counts a download; safe on a nil receiver
func (m *Metrics) IncDownload(result string) {
	if m != nil {
		m.Downloads.WithLabelValues(result).Inc()
	}
}

// IncNotification counts a notification; safe on a nil receiver
func (m *Metrics) IncNotification(result string) {
	if m != nil {
		m.Notifications.WithLabelValues(result).Inc()
	}
}

// GinMiddleware observes request latency labelled by the matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched" // Keep label cardinality bounded
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
