package http

import (
	"net/http"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
)

type CleanupHandler struct {
	Controller *service.Controller
}

// HandlePerform godoc
//
//	@Summary		Run Cleanup
//	@Description	Deletes expired codes and used codes past retention right now. Failures are reported, unlike scheduled runs.
//	@Tags			Cleanup
//	@Produce		json
//	@Success		200	{object}	codesdk.CleanupResponse	"cleanedCount, durationMs"
//	@Failure		401	{object}	codesdk.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	codesdk.ErrorResponse	"insufficient_scope"
//	@Failure		500	{object}	codesdk.ErrorResponse	"system_error"
//	@Security		BearerAuth
//	@Router			/auth/codes/cleanup [post].
func (h *CleanupHandler) HandlePerform(w http.ResponseWriter, r *http.Request) {
	env := h.Controller.PerformCleanup(r.Context())
	if !env.OK() {
		writeEnvelopeError(w, env.StatusCode, env.Kind, env.Message)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, codesdk.CleanupResponse{
		CleanedCount:   env.Data.CleanedCount,
		ExpiredDeleted: env.Data.ExpiredDeleted,
		UsedDeleted:    env.Data.UsedDeleted,
		DurationMs:     env.Data.DurationMs,
	})
}

// HandleStatus godoc
//
//	@Summary		Cleanup Scheduler Status
//	@Description	Reports whether the periodic cleanup is running, its interval, and the outcome of the last run.
//	@Tags			Cleanup
//	@Produce		json
//	@Success		200	{object}	codesdk.CleanupStatusResponse	"isRunning, intervalMs"
//	@Failure		401	{object}	codesdk.ErrorResponse			"invalid_token"
//	@Failure		403	{object}	codesdk.ErrorResponse			"insufficient_scope"
//	@Security		BearerAuth
//	@Router			/auth/codes/cleanup/status [get].
func (h *CleanupHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	env := h.Controller.GetCleanupStatus(r.Context())

	resp := codesdk.CleanupStatusResponse{
		IsRunning:  env.Data.IsRunning,
		IntervalMs: env.Data.IntervalMs,
		LastError:  env.Data.LastError,
	}
	if last := env.Data.LastRun; last != nil {
		at := last.StartedAt
		count := last.Count()
		resp.LastRunAt = &at
		resp.LastCleanedCount = &count
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
