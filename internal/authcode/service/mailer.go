package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/notify"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// Delivery describes a sent code email.
type Delivery struct {
	MessageID string
	CodeID    string
	ExpiresAt time.Time
}

// Links builds the deep links embedded in emails.
type Links struct {
	BaseURL          string
	ConfirmationPath string
	ResetPath        string
}

func (l Links) For(codeType domain.CodeType, code string) (string, error) {
	path := l.ConfirmationPath
	if codeType == domain.CodeTypePasswordReset {
		path = l.ResetPath
	}

	u, err := url.Parse(strings.TrimRight(l.BaseURL, "/") + path)
	if err != nil {
		return "", fmt.Errorf("build link: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Mailer issues a fresh code and emails it. Any earlier code of the same
// type for the user is revoked first.
type Mailer struct {
	Issuer    *Issuer
	Sender    notify.Sender
	Templates *notify.Templates
	Links     Links
	TTL       time.Duration
}

func (m *Mailer) SendEmailConfirmation(ctx context.Context, email, userID string) (Delivery, error) {
	return m.send(ctx, email, userID, domain.CodeTypeEmailConfirmation)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, email, userID string) (Delivery, error) {
	return m.send(ctx, email, userID, domain.CodeTypePasswordReset)
}

func (m *Mailer) send(ctx context.Context, email, userID string, codeType domain.CodeType) (Delivery, error) {
	log := slogx.FromContext(ctx).With(slog.String("type", codeType.String()))

	// 1. Replace any outstanding code
	code, rec, err := m.Issuer.Reissue(ctx, userID, codeType, m.TTL)
	if err != nil {
		return Delivery{}, err
	}
	d := Delivery{CodeID: rec.ID, ExpiresAt: rec.ExpiresAt}

	// 2. Render
	link, err := m.Links.For(codeType, code)
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	msg, err := m.Templates.Render(codeType, link, rec.ExpiresAt.Sub(rec.CreatedAt))
	if err != nil {
		return d, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	msg.To = email
	msg.IdempotencyKey = rec.ID

	// 3. Send. The code stays valid when this fails so the caller can retry.
	id, err := m.Sender.Send(ctx, msg)
	if err != nil {
		log.Error("failed to send code email",
			slog.String("code_id", rec.ID),
			slog.Any("error", err),
		)
		return d, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	d.MessageID = id
	log.Info("code email sent",
		slog.String("code_id", rec.ID),
		slog.String("user_id", rec.UserID),
		slog.String("message_id", id),
	)
	return d, nil
}
