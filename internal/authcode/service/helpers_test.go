package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/metrics"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store/drivers/sqlite"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

var errDBDown = errors.New("database is down")

// clock is a settable time source shared by every component under test.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store      store.Store
	clock      *clock
	issuer     *Issuer
	validator  *Validator
	cleanup    *CleanupScheduler
	controller *Controller
	metrics    *metrics.Metrics
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, newTestStore(t))
}

func newTestEnvWithStore(t *testing.T, s store.Store) *testEnv {
	t.Helper()

	hasher, err := cryptox.NewFingerprinter("test-pepper")
	require.NoError(t, err)

	c := newClock()
	m := metrics.New(prometheus.NewRegistry())
	env := &testEnv{
		store:   s,
		clock:   c,
		metrics: m,
		issuer: &Issuer{
			Store:      s,
			Hasher:     hasher,
			DefaultTTL: DefaultCodeTTL,
			Now:        c.Now,
			Metrics:    m,
		},
		validator: &Validator{
			Store:        s,
			Hasher:       hasher,
			StoreTimeout: time.Second,
			Now:          c.Now,
			Metrics:      m,
		},
		cleanup: NewCleanupScheduler(s, slogx.Discard(), CleanupOptions{Now: c.Now, Metrics: m}),
	}
	env.controller = &Controller{Validator: env.validator, Cleanup: env.cleanup}
	t.Cleanup(env.cleanup.Stop)
	return env
}

func (e *testEnv) issue(t *testing.T, userID string, codeType domain.CodeType, ttl time.Duration) (string, domain.AuthCode) {
	t.Helper()

	code, rec, err := e.issuer.Issue(context.Background(), userID, codeType, ttl)
	require.NoError(t, err)
	return code, rec
}

// failingStore wraps a real store and fails selected AuthCodes calls.
type failingStore struct {
	store.Store
	codes *failingCodes
}

type failingCodes struct {
	store.AuthCodes

	lookup        error
	markUsed      error
	deleteExpired error
	deleteUsed    error
}

func newFailingStore(inner store.Store) *failingStore {
	return &failingStore{Store: inner, codes: &failingCodes{AuthCodes: inner.AuthCodes()}}
}

func (s *failingStore) AuthCodes() store.AuthCodes { return s.codes }

func (c *failingCodes) GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthCode, error) {
	if c.lookup != nil {
		return domain.AuthCode{}, c.lookup
	}
	return c.AuthCodes.GetAuthCodeByHash(ctx, hash)
}

func (c *failingCodes) MarkAuthCodeUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	if c.markUsed != nil {
		return false, c.markUsed
	}
	return c.AuthCodes.MarkAuthCodeUsed(ctx, id, usedAt)
}

func (c *failingCodes) DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int64, error) {
	if c.deleteExpired != nil {
		return 0, c.deleteExpired
	}
	return c.AuthCodes.DeleteExpiredAuthCodes(ctx, before)
}

func (c *failingCodes) DeleteUsedAuthCodes(ctx context.Context, usedBefore time.Time) (int64, error) {
	if c.deleteUsed != nil {
		return 0, c.deleteUsed
	}
	return c.AuthCodes.DeleteUsedAuthCodes(ctx, usedBefore)
}
