package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("chatty"))
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slogx.NewWriter(slogx.Config{Service: "authcodes", Env: "test"}, &buf)

	var fromCtx *slog.Logger
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-ID", "req-123")
	h.ServeHTTP(rec, req)

	require.NotNil(t, fromCtx)
	require.NotSame(t, slog.Default(), fromCtx)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["msg"])
	require.Equal(t, "req-123", line["req_id"])
	require.Equal(t, "authcodes", line["service"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
}

func TestHTTPMiddleware_GeneratesRequestID(t *testing.T) {
	h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, rec.Header().Get("X-Request-ID"), 26)
}
