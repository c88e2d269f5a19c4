package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

const (
	resendMaxAttempts = 3
	resendMaxWait     = 30 * time.Second
)

type emailAPI interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// ResendSender delivers through the Resend REST API. Rate-limit responses
// and transient network errors are retried.
type ResendSender struct {
	from    string
	emails  emailAPI
	backoff time.Duration
}

func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend api key is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("email from is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendSender{
		from:    from,
		emails:  client.Emails,
		backoff: time.Second,
	}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	log := slogx.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt < resendMaxAttempts; attempt++ {
		resp, err := s.emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return resp.Id, nil
		}
		lastErr = err

		wait, retry := s.retryDelay(err, attempt)
		if !retry || attempt == resendMaxAttempts-1 {
			break
		}
		log.Warn("resend send failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	return "", fmt.Errorf("resend send failed: %w", lastErr)
}

func (s *ResendSender) retryDelay(err error, attempt int) (time.Duration, bool) {
	step := time.Duration(attempt+1) * s.backoff

	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			return min(time.Duration(seconds)*time.Second, resendMaxWait), true
		}
		return step, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return step / 2, true
	}

	return 0, false
}
