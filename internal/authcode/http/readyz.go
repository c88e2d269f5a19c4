package http

import (
	"net/http"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/service"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness check covering the database and reporting the cleanup scheduler.
//	@Description	Only a failing database makes the service unready.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	codesdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	codesdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cleanup *service.CleanupScheduler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &codesdk.HealthChecks{
			Database: "ok",
			Cleanup:  "stopped",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if cleanup != nil {
			s := cleanup.Status()
			switch {
			case s.LastError != "":
				checks.Cleanup = "error: " + s.LastError
			case s.Running:
				checks.Cleanup = "ok"
			}
		}

		httpx.WriteJSON(w, statusCode, codesdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
