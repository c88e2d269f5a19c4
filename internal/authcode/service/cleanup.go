package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/metrics"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
)

const (
	// DefaultCleanupInterval is used when Start is given a non-positive interval.
	DefaultCleanupInterval = 6 * time.Hour

	// DefaultUsedRetention keeps consumed codes around for auditing.
	DefaultUsedRetention = 24 * time.Hour

	cleanupLockKey = "authcodes:cleanup"
)

// Locker lets only one instance run a scheduled cleanup tick. ok is false
// when another instance holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// CleanupOptions are the retention knobs of a CleanupScheduler.
type CleanupOptions struct {
	// ExpiredRetention delays deletion of expired codes past their expiry.
	ExpiredRetention time.Duration
	// UsedRetention is how long consumed codes are kept. Zero uses
	// DefaultUsedRetention; negative disables used-code deletion.
	UsedRetention time.Duration
	// Locker and Metrics are optional.
	Locker  Locker
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// SchedulerStatus is a snapshot of the scheduler.
type SchedulerStatus struct {
	Running   bool
	Interval  time.Duration
	LastRun   *domain.CleanupResult
	LastError string
}

// CleanupScheduler periodically removes expired and long-consumed codes.
type CleanupScheduler struct {
	Store  store.Store
	Logger *slog.Logger

	opts CleanupOptions

	mu       sync.Mutex
	running  bool
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	lastRun  *domain.CleanupResult
	lastErr  error
}

func NewCleanupScheduler(s store.Store, logger *slog.Logger, opts CleanupOptions) *CleanupScheduler {
	if opts.UsedRetention == 0 {
		opts.UsedRetention = DefaultUsedRetention
	}
	return &CleanupScheduler{
		Store:  s,
		Logger: logger,
		opts:   opts,
	}
}

// Start begins periodic cleanup. Calling Start on a running scheduler logs a
// warning and changes nothing.
func (s *CleanupScheduler) Start(interval time.Duration, runImmediately bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.Logger.Warn("cleanup scheduler already running", "interval", s.interval)
		return
	}
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	s.running = true
	s.interval = interval
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.run(interval, runImmediately, s.stopCh, s.doneCh)
	s.Logger.Info("cleanup scheduler started", "interval", interval, "run_immediately", runImmediately)
}

// Stop cancels the timer and waits for an in-flight run to finish.
// Stopping a stopped scheduler is a no-op.
func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.interval = 0
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	s.Logger.Info("cleanup scheduler stopped")
}

// Running reports whether the timer is active.
func (s *CleanupScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval is the active interval, or zero when stopped.
func (s *CleanupScheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *CleanupScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SchedulerStatus{Running: s.running, Interval: s.interval}
	if s.lastRun != nil {
		last := *s.lastRun
		st.LastRun = &last
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func (s *CleanupScheduler) run(interval time.Duration, runImmediately bool, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if runImmediately {
		s.tick(interval)
	}

	for {
		select {
		case <-ticker.C:
			s.tick(interval)
		case <-stopCh:
			return
		}
	}
}

// tick is a scheduled run. Errors are logged and recorded, never returned.
func (s *CleanupScheduler) tick(interval time.Duration) {
	ctx := context.Background()

	if s.opts.Locker != nil {
		release, ok, err := s.opts.Locker.Acquire(ctx, cleanupLockKey, interval)
		if err != nil {
			s.Logger.Error("cleanup lock unavailable, skipping tick", "error", err)
			return
		}
		if !ok {
			s.Logger.Debug("cleanup tick held by another instance")
			return
		}
		defer func() {
			if err := release(ctx); err != nil {
				s.Logger.Warn("failed to release cleanup lock", "error", err)
			}
		}()
	}

	if _, err := s.RunOnce(ctx); err != nil {
		s.Logger.Error("scheduled cleanup failed", "error", err)
	}
}

// RunOnce deletes expired codes and consumed codes past retention. The two
// deletions are independent; a failure in one does not skip the other and
// the returned result carries whatever was deleted.
func (s *CleanupScheduler) RunOnce(ctx context.Context) (domain.CleanupResult, error) {
	start := time.Now()
	now := nowUTC(s.opts.Now)
	res := domain.CleanupResult{StartedAt: now}

	var errs []error

	n, err := s.Store.AuthCodes().DeleteExpiredAuthCodes(ctx, now.Add(-s.opts.ExpiredRetention))
	if err != nil {
		s.Logger.Error("failed to delete expired codes", "error", err)
		s.opts.Metrics.StoreError("delete_expired_codes")
		errs = append(errs, systemError("delete expired codes", err))
	} else {
		res.ExpiredDeleted = n
	}

	if s.opts.UsedRetention > 0 {
		n, err := s.Store.AuthCodes().DeleteUsedAuthCodes(ctx, now.Add(-s.opts.UsedRetention))
		if err != nil {
			s.Logger.Error("failed to delete used codes", "error", err)
			s.opts.Metrics.StoreError("delete_used_codes")
			errs = append(errs, systemError("delete used codes", err))
		} else {
			res.UsedDeleted = n
		}
	}

	res.Elapsed = time.Since(start)
	runErr := errors.Join(errs...)

	s.mu.Lock()
	s.lastRun = &res
	s.lastErr = runErr
	s.mu.Unlock()

	s.opts.Metrics.ObserveCleanup(res, runErr)
	s.Logger.Info("cleanup completed",
		"expired_deleted", res.ExpiredDeleted,
		"used_deleted", res.UsedDeleted,
		"total_deleted", res.Count(),
		"duration_ms", res.Elapsed.Milliseconds(),
	)

	return res, runErr
}
