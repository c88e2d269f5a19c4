//go:build e2e

package authcodes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
)

func TestHealthEndpoints(t *testing.T) {
	svc := setupService(t, nil)

	health, err := svc.client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	health, err = svc.client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cleanup)
}

// TestEmailConfirmationLifecycle sends a code, checks its status and
// consumes it exactly once.
func TestEmailConfirmationLifecycle(t *testing.T) {
	svc := setupService(t, nil)
	ctx := t.Context()

	code := svc.sendConfirmation(t, "keeper-1")

	status, err := svc.client.GetCodeStatus(ctx, code)
	require.NoError(t, err)
	require.True(t, status.Found)
	require.True(t, status.IsValid)
	require.Equal(t, codesdk.CodeTypeEmailConfirmation, status.Type)

	// Wrong endpoint for the type
	_, err = svc.client.ValidatePasswordReset(ctx, code)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeInvalidCode))

	resp, err := svc.client.ValidateEmailConfirmation(ctx, code)
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "keeper-1", resp.UserID)

	_, err = svc.client.ValidateEmailConfirmation(ctx, code)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeUsedCode))

	status, err = svc.client.GetCodeStatus(ctx, code)
	require.NoError(t, err)
	require.True(t, status.IsUsed)
	require.False(t, status.IsValid)
}

func TestResendRevokesPreviousCode(t *testing.T) {
	svc := setupService(t, nil)
	ctx := t.Context()

	first := svc.sendConfirmation(t, "keeper-2")
	second := svc.sendConfirmation(t, "keeper-2")
	require.NotEqual(t, first, second)

	_, err := svc.client.ValidateEmailConfirmation(ctx, first)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeUsedCode))

	resp, err := svc.client.ValidateCode(ctx, second)
	require.NoError(t, err)
	require.Equal(t, codesdk.CodeTypeEmailConfirmation, resp.Type)
}

func TestExpiredCodeIsCleanedUp(t *testing.T) {
	svc := setupService(t, map[string]string{
		"CODE_TTL":         "2s",
		"CLEANUP_INTERVAL": "1s",
	})
	ctx := t.Context()

	code := svc.sendConfirmation(t, "keeper-3")

	require.Eventually(t, func() bool {
		_, err := svc.client.ValidateEmailConfirmation(ctx, code)
		return codesdk.IsErrorCode(err, codesdk.ErrorCodeExpiredCode) ||
			codesdk.IsErrorCode(err, codesdk.ErrorCodeInvalidCode)
	}, 10*time.Second, 250*time.Millisecond)

	// The scheduler removes the record entirely.
	require.Eventually(t, func() bool {
		_, err := svc.client.GetCodeStatus(ctx, code)
		return codesdk.IsErrorCode(err, codesdk.ErrorCodeNotFound)
	}, 10*time.Second, 250*time.Millisecond)

	status, err := svc.admin(t).GetCleanupStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.IsRunning)
	require.NotNil(t, status.LastRunAt)
}

func TestAdminRoutes(t *testing.T) {
	svc := setupService(t, nil)
	ctx := t.Context()

	_, err := svc.client.PerformCleanup(ctx)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeInvalidToken))

	admin := svc.admin(t)

	code := svc.sendConfirmation(t, "keeper-4")

	list, err := admin.ListUserCodes(ctx, "keeper-4", "")
	require.NoError(t, err)
	require.Len(t, list.Codes, 1)
	require.Equal(t, codesdk.CodeStatusValid, list.Codes[0].Status)

	require.NoError(t, admin.RevokeCode(ctx, list.Codes[0].ID))

	_, err = svc.client.ValidateEmailConfirmation(ctx, code)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeUsedCode))

	cleaned, err := admin.PerformCleanup(ctx)
	require.NoError(t, err)
	require.Zero(t, cleaned.ExpiredDeleted)
}

func TestValidateRateLimit(t *testing.T) {
	svc := setupService(t, map[string]string{
		"RATELIMIT_VALIDATE_REQUESTS": "3",
		"RATELIMIT_VALIDATE_BURST":    "3",
	})
	ctx := t.Context()

	var limited bool
	for range 10 {
		_, err := svc.client.ValidateCode(ctx, "not-a-real-code-at-all")
		if codesdk.IsErrorCode(err, codesdk.ErrorCodeRateLimited) {
			limited = true
			break
		}
	}
	require.True(t, limited, "validation should be rate limited")
}
