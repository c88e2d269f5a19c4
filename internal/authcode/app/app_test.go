package app

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/notify"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/codesdk"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
)

const testAdminSecret = "app-test-secret-0123456789abcdef"

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Env:                   "test",
		LogLevel:              "error",
		LogFormat:             "text",
		Port:                  0,
		ShutdownGracePeriod:   time.Second,
		DatabaseDriver:        DriverSQLite,
		DatabaseFile:          filepath.Join(dir, "authcodes.db"),
		PepperFile:            filepath.Join(dir, "pepper"),
		CodeTTL:               5 * time.Minute,
		StoreTimeout:          5 * time.Second,
		CleanupInterval:       time.Hour,
		CleanupRunImmediately: false,
		CleanupUsedRetention:  24 * time.Hour,
		AdminJWTIssuer:        "goalkeeper-authcodes",
		EmailProvider:         EmailProviderLog,
		AppName:               "Goalkeeper Finder",
		AppBaseURL:            "https://goalkeeper.example",
		ConfirmationPath:      "/auth/confirm",
		ResetPath:             "/auth/reset",
	}
}

func startApp(t *testing.T, cfg Config) (*Application, *codesdk.Client) {
	t.Helper()

	application, err := New(cfg)
	require.NoError(t, err)

	application.cleanup.Start(cfg.CleanupInterval, cfg.CleanupRunImmediately)
	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, application.Shutdown())
	})

	return application, codesdk.NewClient(srv.URL)
}

func TestApplication_Wiring(t *testing.T) {
	cfg := testConfig(t)
	_, client := startApp(t, cfg)
	ctx := t.Context()

	health, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cleanup)

	sent, err := client.SendEmailConfirmation(ctx, codesdk.SendCodeRequest{
		Email:  "keeper@example.com",
		UserID: "user-1",
	})
	require.NoError(t, err)
	require.True(t, sent.Success)
	require.True(t, strings.HasPrefix(sent.MessageID, "log-"))

	codes, err := client.ListUserCodes(ctx, "user-1", codesdk.CodeTypeEmailConfirmation)
	require.NoError(t, err)
	require.Len(t, codes.Codes, 1)
	require.Equal(t, sent.CodeID, codes.Codes[0].ID)

	cleaned, err := client.PerformCleanup(ctx)
	require.NoError(t, err)
	require.Zero(t, cleaned.CleanedCount)

	// The pepper was created on first start and is reused.
	require.FileExists(t, cfg.PepperFile)
}

func TestApplication_AdminSecret(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminJWTSecret = testAdminSecret
	_, client := startApp(t, cfg)
	ctx := t.Context()

	_, err := client.GetCleanupStatus(ctx)
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeInvalidToken))

	signer, err := jwtx.NewHS256(testAdminSecret, cfg.AdminJWTIssuer)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewClaims("ops", "", []string{codesdk.AdminScope}, time.Hour, time.Now()))
	require.NoError(t, err)

	status, err := client.WithToken(token).GetCleanupStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.IsRunning)
	require.Equal(t, time.Hour.Milliseconds(), status.IntervalMs)
}

func TestApplication_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()
	application, client := startApp(t, cfg)

	require.NotNil(t, application.redis)

	health, err := client.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
}

func TestNew_Failures(t *testing.T) {
	t.Run("redis unreachable", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.RedisAddr = "127.0.0.1:1"

		_, err := New(cfg)
		require.ErrorContains(t, err, "redis")
	})

	t.Run("weak admin secret", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.AdminJWTSecret = "short"

		_, err := New(cfg)
		require.ErrorContains(t, err, "admin tokens")
	})

	t.Run("resend without key", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.EmailProvider = EmailProviderResend

		_, err := New(cfg)
		require.ErrorContains(t, err, "resend")
	})

	t.Run("prod without a pepper", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Env = "prod"
		cfg.AdminJWTSecret = testAdminSecret

		_, err := New(cfg)
		require.ErrorContains(t, err, "PEPPER or an existing PEPPER_FILE is required")
		require.NoFileExists(t, cfg.PepperFile)
	})
}

func TestApplication_ProdPepper(t *testing.T) {
	t.Run("from the environment", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Env = "prod"
		cfg.AdminJWTSecret = testAdminSecret
		cfg.Pepper = "shared-pepper"

		_, client := startApp(t, cfg)

		health, err := client.GetLiveness(t.Context())
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
		require.NoFileExists(t, cfg.PepperFile)
	})

	t.Run("from an existing file", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Env = "prod"
		cfg.AdminJWTSecret = testAdminSecret
		require.NoError(t, os.WriteFile(cfg.PepperFile, []byte("shared-pepper\n"), 0600))

		application, _ := startApp(t, cfg)

		want, err := cryptox.NewFingerprinter("shared-pepper")
		require.NoError(t, err)
		require.Equal(t, want.Fingerprint("code"), application.hasher.Fingerprint("code"))
	})
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	_, client := startApp(t, testConfig(t))

	_, err := client.ValidateCode(t.Context(), "not-a-real-code-at-all")
	require.True(t, codesdk.IsErrorCode(err, codesdk.ErrorCodeInvalidCode))

	resp, err := http.Get(client.BaseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Contains(t, body.String(), `authcodes_validations_total{outcome="invalid_code",type="any"} 1`)
	require.Contains(t, body.String(), "go_goroutines")
}

func TestApplication_LogSender(t *testing.T) {
	tests := []struct {
		env         string
		includeBody bool
	}{
		{"dev", true},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := testConfig(t)
			cfg.Env = tt.env
			application := &Application{cfg: cfg, logger: slog.New(slog.NewTextHandler(&buf, nil))}

			sender, err := application.newSender()
			require.NoError(t, err)
			require.Equal(t, notify.LogSender{IncludeBody: tt.includeBody}, sender)

			if tt.includeBody {
				require.Contains(t, buf.String(), "plaintext codes")
			} else {
				require.NotContains(t, buf.String(), "plaintext codes")
			}
		})
	}
}
