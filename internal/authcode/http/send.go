package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

var validate = validator.New()

type SendHandler struct {
	Mailer *service.Mailer
}

// HandleEmailConfirmation godoc
//
//	@Summary		Send Email Confirmation
//	@Description	Issues a new email confirmation code, revoking earlier ones, and emails a link carrying it.
//	@Description	If delivery fails the code stays valid and the request can be retried.
//	@Tags			Delivery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.SendCodeRequest		true	"Recipient"
//	@Success		200		{object}	codesdk.SendCodeResponse	"messageId, codeId, expiresAt"
//	@Failure		400		{object}	codesdk.ErrorResponse		"invalid_request"
//	@Failure		429		{object}	codesdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		502		{object}	codesdk.ErrorResponse		"delivery_failed, codeId of the undelivered code"
//	@Router			/auth/codes/send/email-confirmation [post].
func (h *SendHandler) HandleEmailConfirmation(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.Mailer.SendEmailConfirmation)
}

// HandlePasswordReset godoc
//
//	@Summary		Send Password Reset
//	@Description	Issues a new password reset code, revoking earlier ones, and emails a link carrying it.
//	@Tags			Delivery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.SendCodeRequest		true	"Recipient"
//	@Success		200		{object}	codesdk.SendCodeResponse	"messageId, codeId, expiresAt"
//	@Failure		400		{object}	codesdk.ErrorResponse		"invalid_request"
//	@Failure		429		{object}	codesdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		502		{object}	codesdk.ErrorResponse		"delivery_failed, codeId of the undelivered code"
//	@Router			/auth/codes/send/password-reset [post].
func (h *SendHandler) HandlePasswordReset(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, h.Mailer.SendPasswordReset)
}

func (h *SendHandler) send(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, email, userID string) (service.Delivery, error),
) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Parse and validate
	var req codesdk.SendCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.UserID = strings.TrimSpace(req.UserID)

	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, describeValidation(err))
		return
	}

	// 2. Issue and deliver
	d, err := op(ctx, req.Email, req.UserID)
	if err != nil {
		status, code := errorKindOf(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to send code", "error", err)
		}
		apiErr := codesdk.NewAPIError(status, code, sendFailureMessage(code))
		// The code was issued even though delivery failed
		apiErr.CodeID = d.CodeID
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, codesdk.SendCodeResponse{
		Success:   true,
		Message:   "Email sent.",
		MessageID: d.MessageID,
		CodeID:    d.CodeID,
		ExpiresAt: d.ExpiresAt,
	})
}

func sendFailureMessage(code string) string {
	switch code {
	case codesdk.ErrorCodeInvalidRequest:
		return "The request is missing a valid recipient."
	case codesdk.ErrorCodeDeliveryFailed:
		return "We could not send the email. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// describeValidation names the first failing field.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Email":
		return "email must be a valid address"
	case "UserID":
		return "userId is required"
	}
	return fe.Field() + " is invalid"
}
