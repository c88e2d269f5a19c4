package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/lockx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

func TestCleanup_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes only expired codes", func(t *testing.T) {
		env := newTestEnv(t)
		code, _ := env.issue(t, "u1", domain.CodeTypeEmailConfirmation, 5*time.Minute)

		res, err := env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.Zero(t, res.Count())

		env.clock.Advance(5*time.Minute + time.Second)
		res, err = env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, res.Count())
		require.EqualValues(t, 1, res.ExpiredDeleted)

		_, err = env.validator.ValidateAndConsume(ctx, code, domain.CodeTypeEmailConfirmation)
		require.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		env.issue(t, "u1", domain.CodeTypeEmailConfirmation, time.Minute)
		env.issue(t, "u2", domain.CodeTypePasswordReset, time.Minute)
		env.clock.Advance(time.Hour)

		res, err := env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, res.Count())

		res, err = env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.Zero(t, res.Count())
	})

	t.Run("used codes kept for retention", func(t *testing.T) {
		env := newTestEnv(t)
		code, _ := env.issue(t, "u1", domain.CodeTypePasswordReset, 48*time.Hour)
		_, err := env.validator.ValidateAndConsume(ctx, code, domain.CodeTypePasswordReset)
		require.NoError(t, err)

		env.clock.Advance(time.Hour)
		res, err := env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.Zero(t, res.UsedDeleted)

		env.clock.Advance(DefaultUsedRetention)
		res, err = env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, res.UsedDeleted)
	})

	t.Run("expired retention delays deletion", func(t *testing.T) {
		env := newTestEnv(t)
		env.cleanup = NewCleanupScheduler(env.store, slogx.Discard(), CleanupOptions{
			ExpiredRetention: time.Hour,
			Now:              env.clock.Now,
		})
		env.issue(t, "u1", domain.CodeTypeEmailConfirmation, time.Minute)

		env.clock.Advance(30 * time.Minute)
		res, err := env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.Zero(t, res.Count())

		env.clock.Advance(time.Hour)
		res, err = env.cleanup.RunOnce(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, res.Count())
	})

	t.Run("failures are joined and do not skip the other deletion", func(t *testing.T) {
		fs := newFailingStore(newTestStore(t))
		env := newTestEnvWithStore(t, fs)
		code, _ := env.issue(t, "u1", domain.CodeTypePasswordReset, 48*time.Hour)
		_, err := env.validator.ValidateAndConsume(ctx, code, domain.CodeTypePasswordReset)
		require.NoError(t, err)
		env.clock.Advance(DefaultUsedRetention + time.Hour)

		fs.codes.deleteExpired = errDBDown
		res, err := env.cleanup.RunOnce(ctx)
		require.ErrorIs(t, err, ErrSystem)
		require.ErrorIs(t, err, errDBDown)
		require.EqualValues(t, 1, res.UsedDeleted)

		st := env.cleanup.Status()
		require.NotNil(t, st.LastRun)
		require.Contains(t, st.LastError, errDBDown.Error())
	})
}

func TestCleanup_StartStop(t *testing.T) {
	env := newTestEnv(t)
	s := env.cleanup

	require.False(t, s.Running())
	require.Zero(t, s.Interval())

	s.Start(time.Hour, true)
	require.True(t, s.Running())
	require.Equal(t, time.Hour, s.Interval())

	require.Eventually(t, func() bool { return s.Status().LastRun != nil }, time.Second, 5*time.Millisecond)

	// Second start keeps the first interval.
	s.Start(time.Minute, false)
	require.Equal(t, time.Hour, s.Interval())

	s.Stop()
	require.False(t, s.Running())
	require.Zero(t, s.Interval())

	// Stopping twice is harmless, and the scheduler can be restarted.
	s.Stop()
	s.Start(0, false)
	require.Equal(t, DefaultCleanupInterval, s.Interval())
	s.Stop()
}

func TestCleanup_TicksRemoveExpiredCodes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.issue(t, "u1", domain.CodeTypeEmailConfirmation, time.Minute)
	env.clock.Advance(time.Hour)

	env.cleanup.Start(10*time.Millisecond, false)
	require.Eventually(t, func() bool {
		codes, err := env.store.AuthCodes().ListAuthCodesByUser(ctx, "u1", "")
		return err == nil && len(codes) == 0
	}, 2*time.Second, 10*time.Millisecond)
	env.cleanup.Stop()
}

func TestCleanup_ScheduledErrorsAreSwallowed(t *testing.T) {
	fs := newFailingStore(newTestStore(t))
	env := newTestEnvWithStore(t, fs)
	fs.codes.deleteExpired = errDBDown

	env.cleanup.Start(10*time.Millisecond, true)
	require.Eventually(t, func() bool { return env.cleanup.Status().LastError != "" }, time.Second, 5*time.Millisecond)

	// The timer survives failed ticks.
	require.True(t, env.cleanup.Running())
	env.cleanup.Stop()
}

type countingLocker struct {
	calls atomic.Int32
	ok    bool
	err   error
}

func (l *countingLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	l.calls.Add(1)
	if l.err != nil || !l.ok {
		return nil, false, l.err
	}
	return func(context.Context) error { return nil }, true, nil
}

func TestCleanup_Locker(t *testing.T) {
	ctx := context.Background()

	t.Run("held elsewhere skips the tick", func(t *testing.T) {
		env := newTestEnv(t)
		locker := &countingLocker{}
		s := NewCleanupScheduler(env.store, slogx.Discard(), CleanupOptions{Locker: locker, Now: env.clock.Now})

		s.Start(time.Hour, true)
		require.Eventually(t, func() bool { return locker.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		s.Stop()
		require.Nil(t, s.Status().LastRun)
	})

	t.Run("lock errors skip the tick", func(t *testing.T) {
		env := newTestEnv(t)
		locker := &countingLocker{err: errors.New("redis unavailable")}
		s := NewCleanupScheduler(env.store, slogx.Discard(), CleanupOptions{Locker: locker, Now: env.clock.Now})

		s.tick(time.Minute)
		require.Nil(t, s.Status().LastRun)
	})

	t.Run("manual runs bypass the lock", func(t *testing.T) {
		env := newTestEnv(t)
		locker := &countingLocker{}
		s := NewCleanupScheduler(env.store, slogx.Discard(), CleanupOptions{Locker: locker, Now: env.clock.Now})

		_, err := s.RunOnce(ctx)
		require.NoError(t, err)
		require.Zero(t, locker.calls.Load())
	})

	t.Run("redis lock", func(t *testing.T) {
		env := newTestEnv(t)
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		locker := lockx.New(client, "test:")
		s := NewCleanupScheduler(env.store, slogx.Discard(), CleanupOptions{Locker: locker, Now: env.clock.Now})

		env.issue(t, "u1", domain.CodeTypeEmailConfirmation, time.Minute)
		env.clock.Advance(time.Hour)

		// Another instance holds the lock.
		other, err := locker.TryLock(ctx, cleanupLockKey, time.Minute)
		require.NoError(t, err)

		s.tick(time.Minute)
		require.Nil(t, s.Status().LastRun)

		require.NoError(t, locker.Unlock(ctx, other))
		s.tick(time.Minute)
		require.NotNil(t, s.Status().LastRun)
		require.EqualValues(t, 1, s.Status().LastRun.Count())

		// The tick released its own lock.
		require.False(t, mr.Exists("test:"+cleanupLockKey))
	})
}
