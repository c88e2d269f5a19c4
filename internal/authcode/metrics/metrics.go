// Package metrics holds the Prometheus collectors of the auth code service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
)

const namespace = "authcodes"

// OutcomeOK labels a successful validation. Failures use the error kind.
const OutcomeOK = "ok"

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	CodesIssued        *prometheus.CounterVec
	Validations        *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	CleanupDeleted     *prometheus.CounterVec
	CleanupRuns        *prometheus.CounterVec
	StoreErrors        *prometheus.CounterVec
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CodesIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issued_total",
			Help:      "Codes issued, by type and whether earlier codes were replaced.",
		}, []string{"type", "replaced"}),

		Validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation attempts by expected type and outcome.",
		}, []string{"type", "outcome"}),

		ValidationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "validation_duration_seconds",
			Help:      "Validation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),

		CleanupDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_deleted_total",
			Help:      "Codes removed by cleanup, by kind (expired, used).",
		}, []string{"kind"}),

		CleanupRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_runs_total",
			Help:      "Cleanup runs by status.",
		}, []string{"status"}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed store operations by operation.",
		}, []string{"operation"}),
	}
}

func (m *Metrics) CodeIssued(codeType domain.CodeType, replaced bool) {
	if m == nil {
		return
	}
	r := "false"
	if replaced {
		r = "true"
	}
	m.CodesIssued.WithLabelValues(codeType.String(), r).Inc()
}

// ObserveValidation records one attempt. An empty codeType is labelled "any".
func (m *Metrics) ObserveValidation(codeType domain.CodeType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	t := codeType.String()
	if t == "" {
		t = "any"
	}
	m.Validations.WithLabelValues(t, outcome).Inc()
	m.ValidationDuration.WithLabelValues(t).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCleanup(res domain.CleanupResult, err error) {
	if m == nil {
		return
	}
	m.CleanupDeleted.WithLabelValues("expired").Add(float64(res.ExpiredDeleted))
	m.CleanupDeleted.WithLabelValues("used").Add(float64(res.UsedDeleted))

	status := "success"
	if err != nil {
		status = "error"
	}
	m.CleanupRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(op).Inc()
}
