package service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

// Outcome is the coarse result class of a façade call.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeClientError Outcome = "client_error"
	OutcomeSystemError Outcome = "system_error"
)

// Envelope is what every Controller operation returns. Kind is empty on
// success.
type Envelope[T any] struct {
	Outcome    Outcome
	StatusCode int
	Message    string
	Kind       ErrorKind
	Data       T
}

func (e Envelope[T]) OK() bool { return e.Outcome == OutcomeSuccess }

// ValidatedCode is the payload of a successful validation.
type ValidatedCode struct {
	CodeID string
	UserID string
	Type   domain.CodeType
	UsedAt time.Time
}

// CodeStatusReport is the payload of GetCodeStatus.
type CodeStatusReport struct {
	Found     bool
	Valid     bool
	Expired   bool
	Used      bool
	Type      domain.CodeType
	ExpiresAt time.Time
}

// CleanupReport is the payload of PerformCleanup.
type CleanupReport struct {
	CleanedCount   int64
	ExpiredDeleted int64
	UsedDeleted    int64
	DurationMs     int64
}

// CleanupState is the payload of GetCleanupStatus.
type CleanupState struct {
	IsRunning  bool
	IntervalMs int64
	LastRun    *domain.CleanupResult
	LastError  string
}

const (
	msgEmailConfirmed  = "Email confirmed successfully."
	msgPasswordReset   = "Password reset code accepted."
	msgCodeAccepted    = "Code accepted."
	msgStatusFound     = "Code found."
	msgStatusNotFound  = "Code not found."
	msgCleanupDone     = "Cleanup completed."
	msgCleanupStatus   = "Cleanup scheduler status."
	msgEmptyCode       = "Please enter the code from your email."
	msgInvalidCode     = "This code is not valid. Please request a new one."
	msgUsedCode        = "This code has already been used. Please request a new one."
	msgSystemError     = "Something went wrong. Please try again."
	msgExpiredFallback = "This code has expired. Please request a new one."
	msgExpiredConfirm  = "This confirmation code has expired. Please request a new confirmation email."
	msgExpiredReset    = "This password reset code has expired. Please request a new reset email."
)

// Controller is the coarse-grained entry point used by the HTTP layer. It
// never returns an error; every failure is folded into an Envelope.
type Controller struct {
	Validator *Validator
	Cleanup   *CleanupScheduler
}

func (c *Controller) ValidateEmailConfirmationCode(ctx context.Context, code string) Envelope[ValidatedCode] {
	rec, err := c.Validator.ValidateAndConsume(ctx, code, domain.CodeTypeEmailConfirmation)
	return validated(ctx, rec, err, domain.CodeTypeEmailConfirmation)
}

func (c *Controller) ValidatePasswordResetCode(ctx context.Context, code string) Envelope[ValidatedCode] {
	rec, err := c.Validator.ValidateAndConsume(ctx, code, domain.CodeTypePasswordReset)
	return validated(ctx, rec, err, domain.CodeTypePasswordReset)
}

// ValidateAnyCode consumes code whatever its type.
func (c *Controller) ValidateAnyCode(ctx context.Context, code string) Envelope[ValidatedCode] {
	rec, err := c.Validator.ValidateAnyAndConsume(ctx, code)
	return validated(ctx, rec, err, "")
}

// GetCodeStatus is non-consuming. An unknown code is a 404 client error.
func (c *Controller) GetCodeStatus(ctx context.Context, code string) Envelope[CodeStatusReport] {
	st, err := c.Validator.Status(ctx, code)
	if err != nil {
		return failure[CodeStatusReport](ctx, err, "")
	}
	if !st.Found {
		return Envelope[CodeStatusReport]{
			Outcome:    OutcomeClientError,
			StatusCode: http.StatusNotFound,
			Message:    msgStatusNotFound,
			Kind:       KindInvalidCode,
		}
	}
	return Envelope[CodeStatusReport]{
		Outcome:    OutcomeSuccess,
		StatusCode: http.StatusOK,
		Message:    msgStatusFound,
		Data: CodeStatusReport{
			Found:     true,
			Valid:     st.Valid,
			Expired:   st.Expired,
			Used:      st.Used,
			Type:      st.Type,
			ExpiresAt: st.ExpiresAt,
		},
	}
}

// PerformCleanup runs the cleanup routine now and surfaces its error.
func (c *Controller) PerformCleanup(ctx context.Context) Envelope[CleanupReport] {
	res, err := c.Cleanup.RunOnce(ctx)
	if err != nil {
		return failure[CleanupReport](ctx, err, "")
	}
	return Envelope[CleanupReport]{
		Outcome:    OutcomeSuccess,
		StatusCode: http.StatusOK,
		Message:    msgCleanupDone,
		Data: CleanupReport{
			CleanedCount:   res.Count(),
			ExpiredDeleted: res.ExpiredDeleted,
			UsedDeleted:    res.UsedDeleted,
			DurationMs:     res.Elapsed.Milliseconds(),
		},
	}
}

func (c *Controller) GetCleanupStatus(context.Context) Envelope[CleanupState] {
	st := c.Cleanup.Status()
	return Envelope[CleanupState]{
		Outcome:    OutcomeSuccess,
		StatusCode: http.StatusOK,
		Message:    msgCleanupStatus,
		Data: CleanupState{
			IsRunning:  st.Running,
			IntervalMs: st.Interval.Milliseconds(),
			LastRun:    st.LastRun,
			LastError:  st.LastError,
		},
	}
}

func validated(ctx context.Context, rec domain.AuthCode, err error, expected domain.CodeType) Envelope[ValidatedCode] {
	if err != nil {
		return failure[ValidatedCode](ctx, err, expected)
	}

	msg := msgCodeAccepted
	switch rec.Type {
	case domain.CodeTypeEmailConfirmation:
		msg = msgEmailConfirmed
	case domain.CodeTypePasswordReset:
		msg = msgPasswordReset
	}

	data := ValidatedCode{CodeID: rec.ID, UserID: rec.UserID, Type: rec.Type}
	if rec.UsedAt != nil {
		data.UsedAt = *rec.UsedAt
	}
	return Envelope[ValidatedCode]{
		Outcome:    OutcomeSuccess,
		StatusCode: http.StatusOK,
		Message:    msg,
		Data:       data,
	}
}

func failure[T any](ctx context.Context, err error, codeType domain.CodeType) Envelope[T] {
	kind := KindOf(err)
	if kind == KindSystem {
		slogx.FromContext(ctx).Error("code operation failed", slog.Any("error", err))
		return Envelope[T]{
			Outcome:    OutcomeSystemError,
			StatusCode: http.StatusInternalServerError,
			Message:    msgSystemError,
			Kind:       KindSystem,
		}
	}
	return Envelope[T]{
		Outcome:    OutcomeClientError,
		StatusCode: http.StatusBadRequest,
		Message:    MessageFor(kind, codeType),
		Kind:       kind,
	}
}

// MessageFor returns the user-facing text for kind. codeType only refines
// the expired message and may be empty.
func MessageFor(kind ErrorKind, codeType domain.CodeType) string {
	switch kind {
	case KindEmptyCode:
		return msgEmptyCode
	case KindInvalidCode:
		return msgInvalidCode
	case KindUsedCode:
		return msgUsedCode
	case KindExpiredCode:
		switch codeType {
		case domain.CodeTypeEmailConfirmation:
			return msgExpiredConfirm
		case domain.CodeTypePasswordReset:
			return msgExpiredReset
		}
		return msgExpiredFallback
	default:
		return msgSystemError
	}
}
