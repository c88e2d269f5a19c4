package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

type CodesHandler struct {
	Controller *service.Controller
}

// HandleValidateEmailConfirmation godoc
//
//	@Summary		Validate Email Confirmation Code
//	@Description	Consumes an email confirmation code. A code can be consumed once; later attempts fail with used_code.
//	@Tags			Codes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.ValidateCodeRequest		true	"Code from the email link"
//	@Success		200		{object}	codesdk.ValidateCodeResponse	"success, message, userId"
//	@Failure		400		{object}	codesdk.ErrorResponse			"empty_code, invalid_code, expired_code, used_code"
//	@Failure		500		{object}	codesdk.ErrorResponse			"system_error"
//	@Router			/auth/codes/validate/email-confirmation [post].
func (h *CodesHandler) HandleValidateEmailConfirmation(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, h.Controller.ValidateEmailConfirmationCode)
}

// HandleValidatePasswordReset godoc
//
//	@Summary		Validate Password Reset Code
//	@Description	Consumes a password reset code. The caller then updates the credential in the session provider.
//	@Tags			Codes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.ValidateCodeRequest		true	"Code from the email link"
//	@Success		200		{object}	codesdk.ValidateCodeResponse	"success, message, userId"
//	@Failure		400		{object}	codesdk.ErrorResponse			"empty_code, invalid_code, expired_code, used_code"
//	@Failure		500		{object}	codesdk.ErrorResponse			"system_error"
//	@Router			/auth/codes/validate/password-reset [post].
func (h *CodesHandler) HandleValidatePasswordReset(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, h.Controller.ValidatePasswordResetCode)
}

// HandleValidate godoc
//
//	@Summary		Validate Any Code
//	@Description	Consumes a code of whichever type it was issued for. The response carries the type.
//	@Tags			Codes
//	@Accept			json
//	@Produce		json
//	@Param			request	body		codesdk.ValidateCodeRequest		true	"Code from the email link"
//	@Success		200		{object}	codesdk.ValidateCodeResponse	"success, message, userId, type"
//	@Failure		400		{object}	codesdk.ErrorResponse			"empty_code, invalid_code, expired_code, used_code"
//	@Failure		500		{object}	codesdk.ErrorResponse			"system_error"
//	@Router			/auth/codes/validate [post].
func (h *CodesHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, h.Controller.ValidateAnyCode)
}

func (h *CodesHandler) validate(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, code string) service.Envelope[service.ValidatedCode],
) {
	var req codesdk.ValidateCodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		slogx.FromContext(r.Context()).Debug("bad validate body", "error", err)
		httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	env := op(r.Context(), req.Code)
	if !env.OK() {
		writeEnvelopeError(w, env.StatusCode, env.Kind, env.Message)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, codesdk.ValidateCodeResponse{
		Success: true,
		Message: env.Message,
		CodeID:  env.Data.CodeID,
		UserID:  env.Data.UserID,
		Type:    env.Data.Type.String(),
		UsedAt:  env.Data.UsedAt,
	})
}

// HandleStatus godoc
//
//	@Summary		Code Status
//	@Description	Reports whether a code exists and is still usable. Never consumes the code.
//	@Tags			Codes
//	@Produce		json
//	@Param			code	query		string						true	"Plaintext code"
//	@Success		200		{object}	codesdk.CodeStatusResponse	"found, isValid, isExpired, isUsed"
//	@Failure		400		{object}	codesdk.ErrorResponse		"empty_code"
//	@Failure		404		{object}	codesdk.ErrorResponse		"not_found"
//	@Failure		500		{object}	codesdk.ErrorResponse		"system_error"
//	@Router			/auth/codes/status [get].
func (h *CodesHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	env := h.Controller.GetCodeStatus(r.Context(), r.URL.Query().Get("code"))
	if !env.OK() {
		writeEnvelopeError(w, env.StatusCode, env.Kind, env.Message)
		return
	}

	st := env.Data
	httpx.WriteJSON(w, http.StatusOK, codesdk.CodeStatusResponse{
		Found:     st.Found,
		IsValid:   st.Valid,
		IsExpired: st.Expired,
		IsUsed:    st.Used,
		Type:      st.Type.String(),
		ExpiresAt: st.ExpiresAt,
		Message:   env.Message,
	})
}

// writeEnvelopeError maps a failed envelope onto the wire error body.
func writeEnvelopeError(w http.ResponseWriter, status int, kind service.ErrorKind, msg string) {
	code := string(kind)
	if status == http.StatusNotFound {
		code = codesdk.ErrorCodeNotFound
	}
	codesdk.NewAPIError(status, code, msg).WriteError(w)
}

// errorKindOf maps service errors outside the envelope path.
func errorKindOf(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidUserID), errors.Is(err, service.ErrInvalidCodeType):
		return http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest
	case errors.Is(err, service.ErrInvalidCode):
		return http.StatusNotFound, codesdk.ErrorCodeNotFound
	case errors.Is(err, service.ErrDeliveryFailed):
		return http.StatusBadGateway, codesdk.ErrorCodeDeliveryFailed
	default:
		return http.StatusInternalServerError, codesdk.ErrorCodeSystemError
	}
}
