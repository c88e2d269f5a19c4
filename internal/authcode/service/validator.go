package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/metrics"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// Validator checks presented codes and consumes them at most once.
type Validator struct {
	Store        store.Store
	Hasher       Hasher
	StoreTimeout time.Duration
	Now          func() time.Time
	Metrics      *metrics.Metrics // optional
}

// ValidateAndConsume checks code against expected and marks it used.
// Concurrent callers presenting the same code get exactly one success; the
// rest see ErrUsedCode.
func (v *Validator) ValidateAndConsume(
	ctx context.Context,
	code string,
	expected domain.CodeType,
) (_ domain.AuthCode, err error) {
	defer v.observe(expected, time.Now(), &err)

	rec, err := v.lookup(ctx, code)
	if err != nil {
		return domain.AuthCode{}, err
	}
	if err := v.check(ctx, rec, expected); err != nil {
		return domain.AuthCode{}, err
	}
	return v.consume(ctx, rec)
}

// ValidateAnyAndConsume is ValidateAndConsume for whatever type the stored
// code carries. It costs a single lookup.
func (v *Validator) ValidateAnyAndConsume(ctx context.Context, code string) (_ domain.AuthCode, err error) {
	defer v.observe("", time.Now(), &err)

	rec, err := v.lookup(ctx, code)
	if err != nil {
		return domain.AuthCode{}, err
	}
	if err := v.check(ctx, rec, rec.Type); err != nil {
		return domain.AuthCode{}, err
	}
	return v.consume(ctx, rec)
}

// Validate runs the same checks as ValidateAndConsume without consuming.
func (v *Validator) Validate(ctx context.Context, code string, expected domain.CodeType) (_ domain.AuthCode, err error) {
	defer v.observe(expected, time.Now(), &err)

	rec, err := v.lookup(ctx, code)
	if err != nil {
		return domain.AuthCode{}, err
	}
	if err := v.check(ctx, rec, expected); err != nil {
		return domain.AuthCode{}, err
	}
	return rec, nil
}

// ValidateForUser is Validate that additionally requires the code to belong
// to userID. A code owned by someone else is indistinguishable from an
// unknown one.
func (v *Validator) ValidateForUser(
	ctx context.Context,
	code string,
	expected domain.CodeType,
	userID string,
) (_ domain.AuthCode, err error) {
	defer v.observe(expected, time.Now(), &err)

	rec, err := v.lookup(ctx, code)
	if err != nil {
		return domain.AuthCode{}, err
	}
	if rec.UserID != userID {
		slogx.FromContext(ctx).Warn("code presented for another user",
			slog.String("code_id", rec.ID),
		)
		return domain.AuthCode{}, ErrInvalidCode
	}
	if err := v.check(ctx, rec, expected); err != nil {
		return domain.AuthCode{}, err
	}
	return rec, nil
}

// Status reports the state of code without type checks or consumption.
// An unknown code yields a zero CodeStatus and no error.
func (v *Validator) Status(ctx context.Context, code string) (domain.CodeStatus, error) {
	rec, err := v.lookup(ctx, code)
	if errors.Is(err, ErrInvalidCode) {
		return domain.CodeStatus{}, nil
	}
	if err != nil {
		return domain.CodeStatus{}, err
	}
	return rec.StatusAt(nowUTC(v.Now)), nil
}

// lookup normalises, fingerprints and fetches a code in any state.
func (v *Validator) lookup(ctx context.Context, code string) (domain.AuthCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Reject empty or malformed input before touching the store
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.AuthCode{}, ErrEmptyCode
	}
	if len(code) < MinCodeLength || len(code) > MaxCodeLength {
		log.Debug("code rejected by length", slog.Int("length", len(code)))
		return domain.AuthCode{}, ErrInvalidCode
	}

	// 2. Fingerprint and fetch
	ctx, cancel := context.WithTimeout(ctx, v.storeTimeout())
	defer cancel()

	rec, err := v.Store.AuthCodes().GetAuthCodeByHash(ctx, v.Hasher.Fingerprint(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("code not found")
			return domain.AuthCode{}, ErrInvalidCode
		}
		log.Error("code lookup failed", slog.Any("error", err))
		v.Metrics.StoreError("lookup_code")
		return domain.AuthCode{}, systemError("lookup code", err)
	}

	return rec, nil
}

// check applies type, used and expiry rules in that order.
func (v *Validator) check(ctx context.Context, rec domain.AuthCode, expected domain.CodeType) error {
	log := slogx.FromContext(ctx).With(slog.String("code_id", rec.ID))

	if rec.Type != expected {
		log.Warn("code presented for the wrong purpose",
			slog.String("type", rec.Type.String()),
			slog.String("expected", expected.String()),
		)
		return ErrInvalidCode
	}
	if rec.IsUsed() {
		log.Info("code already used")
		return ErrUsedCode
	}
	if rec.IsExpiredAt(nowUTC(v.Now)) {
		log.Info("code expired", slog.Time("expires_at", rec.ExpiresAt))
		return ErrExpiredCode
	}
	return nil
}

// consume wins or loses the conditional update. Losing means another
// caller consumed it between lookup and now.
func (v *Validator) consume(ctx context.Context, rec domain.AuthCode) (domain.AuthCode, error) {
	log := slogx.FromContext(ctx).With(slog.String("code_id", rec.ID))

	usedAt := nowUTC(v.Now)

	sctx, cancel := context.WithTimeout(ctx, v.storeTimeout())
	defer cancel()

	won, err := v.Store.AuthCodes().MarkAuthCodeUsed(sctx, rec.ID, usedAt)
	if err != nil {
		log.Error("failed to mark code used", slog.Any("error", err))
		v.Metrics.StoreError("mark_code_used")
		return domain.AuthCode{}, systemError("mark code used", err)
	}
	if !won {
		log.Info("code consumed concurrently")
		return domain.AuthCode{}, ErrUsedCode
	}

	rec.UsedAt = &usedAt
	log.Info("code consumed",
		slog.String("user_id", rec.UserID),
		slog.String("type", rec.Type.String()),
	)
	return rec, nil
}

// observe records the outcome of a validation that began at start.
func (v *Validator) observe(expected domain.CodeType, start time.Time, err *error) {
	outcome := metrics.OutcomeOK
	if *err != nil {
		outcome = string(KindOf(*err))
	}
	v.Metrics.ObserveValidation(expected, outcome, time.Since(start))
}

func (v *Validator) storeTimeout() time.Duration {
	if v.StoreTimeout > 0 {
		return v.StoreTimeout
	}
	return DefaultStoreTimeout
}
