package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	upstreamRequests     *prometheus.CounterVec
	upstreamDuration     prometheus.Histogram
	directoryLoads       *prometheus.CounterVec
	selectionChanges     *prometheus.CounterVec
	transfersTotal       *prometheus.CounterVec
	transferDuration     prometheus.Histogram
	accountsCreatedTotal prometheus.Counter
	authEventsTotal      *prometheus.CounterVec
	apiErrorsTotal       *prometheus.CounterVec
	activeWorkspaces     prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		upstreamRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankapi_requests_total",
				Help: "Total number of upstream banking API requests",
			},
			[]string{"operation", "status"},
		),
		upstreamDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bankapi_request_duration_milliseconds",
				Help:    "Upstream banking API request duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		directoryLoads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_loads_total",
				Help: "Total number of account directory loads",
			},
			[]string{"status"},
		),
		selectionChanges: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selection_changes_total",
				Help: "Total number of account selection changes",
			},
			[]string{"status"},
		),
		transfersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Total number of transfer submissions",
			},
			[]string{"status"},
		),
		transferDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_duration_milliseconds",
				Help:    "Transfer submission duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		accountsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "accounts_created_total",
				Help: "Total number of accounts opened through the dashboard",
			},
		),
		authEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		apiErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_errors_total",
				Help: "Total number of API error responses by code",
			},
			[]string{"code"},
		),
		activeWorkspaces: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_workspaces",
				Help: "Current number of live agent workspaces",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case "bankapi_requests":
		m.upstreamRequests.WithLabelValues(tags["operation"], status).Inc()
	case "directory_load":
		if status != "" {
			m.directoryLoads.WithLabelValues(status).Inc()
		}
	case "selection_select":
		if status != "" {
			m.selectionChanges.WithLabelValues(status).Inc()
		}
	case "transfers_total":
		if status != "" {
			m.transfersTotal.WithLabelValues(status).Inc()
		}
	case "account_created":
		m.accountsCreatedTotal.Inc()
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authEventsTotal.WithLabelValues(eventType).Inc()
		}
	case "api_error":
		if code := tags["code"]; code != "" {
			m.apiErrorsTotal.WithLabelValues(code).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "bankapi_request":
		m.upstreamDuration.Observe(float64(duration.Milliseconds()))
	case "transfer_duration":
		m.transferDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "active_workspaces":
		m.activeWorkspaces.Set(value)
	}
}
