package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	AccountsRegistered prometheus.Counter
	Logins             *prometheus.CounterVec
	CertificatesIssued prometheus.Counter
	Reviews            *prometheus.CounterVec
	StoreLatency       *prometheus.HistogramVec
	HTTPLatency        *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AccountsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_accounts_registered_total",
			Help: "Total number of accounts created in the registry",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certledger_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		Reviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certledger_reviews_total",
			Help: "Review decisions by outcome",
		}, []string{"decision"}),
		StoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certledger_store_op_duration_seconds",
			Help:    "Latency of store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"store", "op"}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "certledger_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordLogin increments the login counter for one outcome
// ("success", "wrong_credential", "not_registered").
func (m *Metrics) RecordLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

// RecordReview increments the review counter for "approved" or "rejected".
func (m *Metrics) RecordReview(decision string) {
	m.Reviews.WithLabelValues(decision).Inc()
}

// ObserveStoreOp records the latency of one store call.
func (m *Metrics) ObserveStoreOp(store, op string, seconds float64) {
	m.StoreLatency.WithLabelValues(store, op).Observe(seconds)
}
