// Package metrics defines the Prometheus instruments of the bookkeeping engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	// --- Journal workflow ---
	EntriesCreated  prometheus.Counter
	EntriesPosted   prometheus.Counter
	EntriesApproved prometheus.Counter
	EntriesReversed prometheus.Counter
	OperationErrors *prometheus.CounterVec

	// --- Chart of accounts ---
	AccountsCreated prometheus.Counter
	BalanceCache    *prometheus.CounterVec

	// --- Reports ---
	ReportDuration *prometheus.HistogramVec

	// --- HTTP ---
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New registers every metric on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_journal_entries_created_total",
			Help: "Draft journal entries created",
		}),
		EntriesPosted: f.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_journal_entries_posted_total",
			Help: "Journal entries posted to account balances",
		}),
		EntriesApproved: f.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_journal_entries_approved_total",
			Help: "Posted journal entries approved",
		}),
		EntriesReversed: f.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_journal_entries_reversed_total",
			Help: "Journal entries reversed by a mirror entry",
		}),
		OperationErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookkeeping_operation_errors_total",
			Help: "Failed engine operations by operation and error kind",
		}, []string{"operation", "kind"}),
		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bookkeeping_accounts_created_total",
			Help: "Accounts added to the chart of accounts",
		}),
		BalanceCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookkeeping_balance_cache_lookups_total",
			Help: "Account balance cache lookups by result",
		}, []string{"result"}),
		ReportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookkeeping_report_duration_seconds",
			Help:    "Time to derive a report",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bookkeeping_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bookkeeping_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveReport records the time since start for the named report. Safe on a nil receiver.
func (m *Metrics) ObserveReport(report string, start time.Time) {
	if m == nil {
		return
	}
	m.ReportDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())
}

// CountError records a failed operation. Safe on a nil receiver.
func (m *Metrics) CountError(operation, kind string) {
	if m == nil {
		return
	}
	m.OperationErrors.WithLabelValues(operation, kind).Inc()
}

// GinMiddleware records request counts and latencies by matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
