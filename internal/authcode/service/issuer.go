package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/metrics"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/idx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// Issuer mints codes and manages their revocation.
type Issuer struct {
	Store      store.Store
	Hasher     Hasher
	DefaultTTL time.Duration
	Now        func() time.Time
	Metrics    *metrics.Metrics // optional
}

// Issue mints a new code for userID. The plaintext is returned exactly once;
// only its fingerprint is persisted. A non-positive ttl uses DefaultTTL.
func (s *Issuer) Issue(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
	ttl time.Duration,
) (string, domain.AuthCode, error) {
	return s.issue(ctx, userID, codeType, ttl, false)
}

// Reissue revokes the user's outstanding codes of codeType and mints a new
// one in the same transaction, so at most one code of that type is live.
func (s *Issuer) Reissue(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
	ttl time.Duration,
) (string, domain.AuthCode, error) {
	return s.issue(ctx, userID, codeType, ttl, true)
}

func (s *Issuer) issue(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
	ttl time.Duration,
	replace bool,
) (string, domain.AuthCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.AuthCode{}, ErrInvalidUserID
	}
	if !codeType.Valid() {
		return "", domain.AuthCode{}, ErrInvalidCodeType
	}
	if ttl <= 0 {
		ttl = s.defaultTTL()
	}

	// 2. Generate the plaintext and its fingerprint
	plaintext, err := cryptox.GenerateToken(cryptox.TokenSize192)
	if err != nil {
		log.Error("failed to generate code", slog.Any("error", err))
		return "", domain.AuthCode{}, fmt.Errorf("%w: %w", ErrIssuance, err)
	}

	now := nowUTC(s.Now)
	code := domain.AuthCode{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Type:      codeType,
		CodeHash:  s.Hasher.Fingerprint(plaintext),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	// 3. Persist, replacing earlier codes when asked
	var revoked int64
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if replace {
			if err := tx.AuthCodes().LockUserCodes(ctx, userID, codeType); err != nil {
				return err
			}
			n, err := tx.AuthCodes().DeleteAuthCodesByUserAndType(ctx, userID, codeType)
			if err != nil {
				return err
			}
			revoked = n
		}
		return tx.AuthCodes().CreateAuthCode(ctx, code)
	})
	if err != nil {
		log.Error("failed to store code",
			slog.String("user_id", userID),
			slog.String("type", codeType.String()),
			slog.Any("error", err),
		)
		s.Metrics.StoreError("create_code")
		return "", domain.AuthCode{}, fmt.Errorf("%w: %w", ErrIssuance, err)
	}
	s.Metrics.CodeIssued(codeType, replace)

	log.Info("code issued",
		slog.String("code_id", code.ID),
		slog.String("user_id", userID),
		slog.String("type", codeType.String()),
		slog.Time("expires_at", code.ExpiresAt),
		slog.Int64("revoked", revoked),
	)

	return plaintext, code, nil
}

// Revoke deletes every code of codeType held by userID.
func (s *Issuer) Revoke(ctx context.Context, userID string, codeType domain.CodeType) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrInvalidUserID
	}
	if !codeType.Valid() {
		return 0, ErrInvalidCodeType
	}

	n, err := s.Store.AuthCodes().DeleteAuthCodesByUserAndType(ctx, userID, codeType)
	if err != nil {
		s.Metrics.StoreError("revoke_codes")
		return 0, systemError("revoke codes", err)
	}

	slogx.FromContext(ctx).Info("codes revoked",
		slog.String("user_id", userID),
		slog.String("type", codeType.String()),
		slog.Int64("count", n),
	)
	return n, nil
}

// RevokeByID marks a single code used so it can no longer be redeemed.
// Revoking an already-used code succeeds; an unknown id is ErrInvalidCode.
func (s *Issuer) RevokeByID(ctx context.Context, id string) error {
	if _, err := s.Store.AuthCodes().GetAuthCodeByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		s.Metrics.StoreError("get_code")
		return systemError("get code", err)
	}

	marked, err := s.Store.AuthCodes().MarkAuthCodeUsed(ctx, id, nowUTC(s.Now))
	if err != nil {
		s.Metrics.StoreError("mark_code_used")
		return systemError("mark code used", err)
	}

	slogx.FromContext(ctx).Info("code revoked",
		slog.String("code_id", id),
		slog.Bool("was_live", marked),
	)
	return nil
}

// ListUserCodes returns the user's codes newest first. An empty codeType
// lists every type.
func (s *Issuer) ListUserCodes(ctx context.Context, userID string, codeType domain.CodeType) ([]domain.AuthCode, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}
	if codeType != "" && !codeType.Valid() {
		return nil, ErrInvalidCodeType
	}

	codes, err := s.Store.AuthCodes().ListAuthCodesByUser(ctx, userID, codeType)
	if err != nil {
		s.Metrics.StoreError("list_codes")
		return nil, systemError("list codes", err)
	}
	return codes, nil
}

func (s *Issuer) defaultTTL() time.Duration {
	if s.DefaultTTL > 0 {
		return s.DefaultTTL
	}
	return DefaultCodeTTL
}
