// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "complaints_http_requests_total", Help: "HTTP requests by method, route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "complaints_http_request_duration_seconds", Help: "HTTP request latency", Buckets: prometheus.DefBuckets},
		[]string{"method", "route"},
	)

	ComplaintsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "complaints_created_total", Help: "Complaints submitted by students"},
	)
	ComplaintsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "complaints_deleted_total", Help: "Pending complaints withdrawn by their owner"},
	)
	StatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "complaints_status_changes_total", Help: "Administrator status updates by target status"},
		[]string{"status"},
	)

	ComplaintsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "complaints_current", Help: "Complaints per status at the last stats refresh"},
		[]string{"status"},
	)
	ComplaintsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "complaints_current_total", Help: "All complaints at the last stats refresh"},
	)
)

// Register adds every collector to the default registry
func Register() {
	prometheus.MustRegister(
		HTTPRequests, HTTPLatency,
		ComplaintsCreated, ComplaintsDeleted, StatusChanges,
		ComplaintsByStatus, ComplaintsTotal,
	)
}
