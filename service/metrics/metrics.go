package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Solana RPC Metrics
	solanaRPCCallsTotal   *prometheus.CounterVec
	solanaRPCCallDuration *prometheus.HistogramVec

	// Payment Pipeline Metrics
	paymentsSubmittedTotal *prometheus.CounterVec
	paymentsConfirmedTotal *prometheus.CounterVec
	paymentsFailedTotal    *prometheus.CounterVec
	paymentPipelineDuration *prometheus.HistogramVec
	confirmationWaitDuration *prometheus.HistogramVec

	// History Store Metrics
	historyStoreDuration   *prometheus.HistogramVec
	historyOperationsTotal *prometheus.CounterVec
	historyLength          *prometheus.GaugeVec

	// HTTP Metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS Metrics
	natsMessagesPublished *prometheus.CounterVec
	natsPublishDuration   *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		// Solana RPC Metrics
		solanaRPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		solanaRPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),

		// Payment Pipeline Metrics
		paymentsSubmittedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_submitted_total",
				Help: "Total number of payment transactions accepted at broadcast",
			},
			[]string{"payer"},
		),
		paymentsConfirmedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_confirmed_total",
				Help: "Total number of payments that reached finalized commitment",
			},
			[]string{"payer"},
		),
		paymentsFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_failed_total",
				Help: "Total number of payment attempts that failed, by stage",
			},
			[]string{"payer", "stage"},
		),
		paymentPipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_pipeline_duration_seconds",
				Help:    "Duration of the full build-sign-broadcast pipeline in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"status"},
		),
		confirmationWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "confirmation_wait_duration_seconds",
				Help:    "Time between broadcast acceptance and finality in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"outcome"},
		),

		// History Store Metrics
		historyStoreDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "history_store_duration_seconds",
				Help:    "Duration of history store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"operation", "backend"},
		),
		historyOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "history_operations_total",
				Help: "Total number of history store operations",
			},
			[]string{"operation", "status"},
		),
		historyLength: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "history_length",
				Help: "Number of records currently held in the payment history",
			},
			[]string{"backend"},
		),

		// HTTP Metrics
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),

		// NATS Metrics
		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published",
			},
			[]string{"subject", "status"},
		),
		natsPublishDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nats_publish_duration_seconds",
				Help:    "Duration of NATS publish operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"subject"},
		),
	}
}

// Solana RPC metric helpers

// RecordRPCCall records a Solana RPC call with duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, duration float64) {
	m.solanaRPCCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.solanaRPCCallDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// Payment pipeline metric helpers

// RecordPaymentSubmitted records a payment accepted at broadcast.
func (m *Metrics) RecordPaymentSubmitted(payer string) {
	m.paymentsSubmittedTotal.WithLabelValues(payer).Inc()
}

// RecordPaymentConfirmed records a payment that reached finality.
func (m *Metrics) RecordPaymentConfirmed(payer string) {
	m.paymentsConfirmedTotal.WithLabelValues(payer).Inc()
}

// RecordPaymentFailed records a failed payment attempt with the stage that
// failed ("validate", "build", "submit", "confirm", "record").
func (m *Metrics) RecordPaymentFailed(payer, stage string) {
	m.paymentsFailedTotal.WithLabelValues(payer, stage).Inc()
}

// RecordPipelineDuration records the duration of a full pipeline run.
func (m *Metrics) RecordPipelineDuration(status string, duration float64) {
	m.paymentPipelineDuration.WithLabelValues(status).Observe(duration)
}

// RecordConfirmationWait records the broadcast-to-finality wait.
func (m *Metrics) RecordConfirmationWait(outcome string, duration float64) {
	m.confirmationWaitDuration.WithLabelValues(outcome).Observe(duration)
}

// History store metric helpers

// RecordHistoryOp records a history store operation ("load" or "save") with duration.
func (m *Metrics) RecordHistoryOp(operation, backend string, duration float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.historyStoreDuration.WithLabelValues(operation, backend).Observe(duration)
	m.historyOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordHistoryLength records the current length of the persisted history.
func (m *Metrics) RecordHistoryLength(backend string, length int) {
	m.historyLength.WithLabelValues(backend).Set(float64(length))
}

// HTTP metric helpers

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

// NATS metric helpers

// RecordNATSPublish records a NATS publish operation.
func (m *Metrics) RecordNATSPublish(subject, status string, duration float64) {
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
	m.natsPublishDuration.WithLabelValues(subject).Observe(duration)
}

// Helper functions

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
