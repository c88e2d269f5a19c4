package http

import (
	"net/http"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
)

type AdminCodesHandler struct {
	Issuer *service.Issuer
}

// HandleList godoc
//
//	@Summary		List User Codes
//	@Description	Lists the codes issued to a user, newest first. Hashes and plaintexts are never returned.
//	@Tags			Admin
//	@Produce		json
//	@Param			user_id	path		string							true	"User ID"
//	@Param			type	query		string							false	"email_confirmation or password_reset"
//	@Success		200		{object}	codesdk.ListUserCodesResponse	"codes"
//	@Failure		400		{object}	codesdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	codesdk.ErrorResponse			"invalid_token"
//	@Failure		403		{object}	codesdk.ErrorResponse			"insufficient_scope"
//	@Security		BearerAuth
//	@Router			/auth/codes/users/{user_id} [get].
func (h *AdminCodesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var codeType domain.CodeType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := domain.ParseCodeType(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, codesdk.ErrorCodeInvalidRequest, "unknown code type")
			return
		}
		codeType = t
	}

	codes, err := h.Issuer.ListUserCodes(ctx, r.PathValue("user_id"), codeType)
	if err != nil {
		status, code := errorKindOf(err)
		if status >= http.StatusInternalServerError {
			slogx.FromContext(ctx).Error("failed to list codes", "error", err)
		}
		httpx.WriteError(w, status, code, "could not list codes")
		return
	}

	now := time.Now().UTC()
	if h.Issuer.Now != nil {
		now = h.Issuer.Now().UTC()
	}

	resp := codesdk.ListUserCodesResponse{Codes: make([]codesdk.UserCode, 0, len(codes))}
	for _, c := range codes {
		resp.Codes = append(resp.Codes, toUserCode(c, now))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRevoke godoc
//
//	@Summary		Revoke Code
//	@Description	Marks a code used so it can no longer be redeemed. Revoking an already used code succeeds.
//	@Tags			Admin
//	@Param			id	path	string	true	"Code ID"
//	@Success		204	"No Content"
//	@Failure		401	{object}	codesdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	codesdk.ErrorResponse	"insufficient_scope"
//	@Failure		404	{object}	codesdk.ErrorResponse	"not_found"
//	@Security		BearerAuth
//	@Router			/auth/codes/{id} [delete].
func (h *AdminCodesHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Issuer.RevokeByID(ctx, r.PathValue("id")); err != nil {
		status, code := errorKindOf(err)
		if status >= http.StatusInternalServerError {
			slogx.FromContext(ctx).Error("failed to revoke code", "error", err)
		}
		httpx.WriteError(w, status, code, "could not revoke code")
		return
	}

	slogx.FromContext(ctx).Info("code revoked by admin",
		"code_id", r.PathValue("id"),
		"admin", httpx.SubjectFromContext(ctx),
	)
	w.WriteHeader(http.StatusNoContent)
}

func toUserCode(c domain.AuthCode, now time.Time) codesdk.UserCode {
	status := codesdk.CodeStatusValid
	switch {
	case c.IsUsed():
		status = codesdk.CodeStatusUsed
	case c.IsExpiredAt(now):
		status = codesdk.CodeStatusExpired
	}

	return codesdk.UserCode{
		ID:        c.ID,
		UserID:    c.UserID,
		Type:      c.Type.String(),
		CreatedAt: c.CreatedAt,
		ExpiresAt: c.ExpiresAt,
		UsedAt:    c.UsedAt,
		Status:    status,
	}
}
