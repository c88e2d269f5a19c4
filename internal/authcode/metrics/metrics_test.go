package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
)

func TestMetrics(t *testing.T) {
	t.Run("records by label", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.CodeIssued(domain.CodeTypePasswordReset, true)
		m.ObserveValidation(domain.CodeTypePasswordReset, OutcomeOK, 10*time.Millisecond)
		m.ObserveValidation("", "expired_code", time.Millisecond)
		m.ObserveCleanup(domain.CleanupResult{ExpiredDeleted: 3, UsedDeleted: 2}, nil)
		m.ObserveCleanup(domain.CleanupResult{ExpiredDeleted: 1}, errors.New("boom"))
		m.StoreError("lookup_code")

		require.InDelta(t, 1, testutil.ToFloat64(m.CodesIssued.WithLabelValues("password_reset", "true")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(m.Validations.WithLabelValues("password_reset", OutcomeOK)), 0)
		require.InDelta(t, 1, testutil.ToFloat64(m.Validations.WithLabelValues("any", "expired_code")), 0)
		require.InDelta(t, 4, testutil.ToFloat64(m.CleanupDeleted.WithLabelValues("expired")), 0)
		require.InDelta(t, 2, testutil.ToFloat64(m.CleanupDeleted.WithLabelValues("used")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(m.CleanupRuns.WithLabelValues("error")), 0)
		require.InDelta(t, 1, testutil.ToFloat64(m.StoreErrors.WithLabelValues("lookup_code")), 0)
		require.Equal(t, 2, testutil.CollectAndCount(m.ValidationDuration))
	})

	t.Run("nil is a no-op", func(t *testing.T) {
		var m *Metrics
		require.NotPanics(t, func() {
			m.CodeIssued(domain.CodeTypeEmailConfirmation, false)
			m.ObserveValidation(domain.CodeTypeEmailConfirmation, OutcomeOK, time.Millisecond)
			m.ObserveCleanup(domain.CleanupResult{}, nil)
			m.StoreError("create_code")
		})
	})

	t.Run("registries are independent", func(t *testing.T) {
		require.NotPanics(t, func() {
			New(prometheus.NewRegistry())
			New(prometheus.NewRegistry())
		})
	})
}
