package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	accountOperations   *prometheus.CounterVec
	operationDuration   prometheus.Histogram
	transferAmount      prometheus.Histogram
	currencyRequests    *prometheus.CounterVec
	rateCacheLookups    *prometheus.CounterVec
	circuitBreakerState *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the service metrics with reg
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		accountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_operations_total",
				Help: "Total number of account operations by outcome",
			},
			[]string{"operation", "status"},
		),
		operationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "account_operation_duration_milliseconds",
				Help:    "Account operation duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		transferAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_amount",
				Help:    "Transfer amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		currencyRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_requests_total",
				Help: "Total number of currency rate API requests",
			},
			[]string{"status"},
		),
		rateCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "currency_rate_cache_lookups_total",
				Help: "Currency rate cache lookups by result",
			},
			[]string{"result"},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "account_operation":
		m.accountOperations.WithLabelValues(tags["operation"], tags["status"]).Inc()
	case "currency_rate_request":
		if status := tags["status"]; status != "" {
			m.currencyRequests.WithLabelValues(status).Inc()
		}
	case "currency_rate_cache":
		if result := tags["result"]; result != "" {
			m.rateCacheLookups.WithLabelValues(result).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "account_operation":
		m.operationDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "transfer_amount":
		m.transferAmount.Observe(value)
	case "circuit_breaker_state":
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	}
}

type noopMetrics struct{}

func (noopMetrics) IncrementCounter(string, map[string]string)     {}
func (noopMetrics) RecordProcessingTime(string, time.Duration)     {}
func (noopMetrics) RecordGauge(string, float64, map[string]string) {}
