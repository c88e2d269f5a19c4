package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), tag("outer"), nil, tag("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAdminAuth(t *testing.T) {
	signer, err := jwtx.NewHS256(strings.Repeat("s", 32), "authcodes")
	require.NoError(t, err)

	var subject string
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = httpx.SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), httpx.AuthnMiddleware(signer), httpx.RequireAnyScope("codes:admin"))

	call := func(header string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/codes/cleanup", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing token", func(t *testing.T) {
		rec := call("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, call("Bearer nope").Code)
	})

	t.Run("wrong scope", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewClaims("ops", "", []string{"codes:read"}, time.Minute, time.Now()))
		require.NoError(t, err)

		rec := call("Bearer " + token)
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("admin scope", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewClaims("ops", "", []string{"codes:admin"}, time.Minute, time.Now()))
		require.NoError(t, err)

		require.Equal(t, http.StatusNoContent, call("Bearer "+token).Code)
		require.Equal(t, "ops", subject)
	})
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Code string `json:"code"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"abc"}`))
	require.NoError(t, httpx.DecodeJSON(req, &body))
	require.Equal(t, "abc", body.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"abc"} {}`))
	require.ErrorIs(t, httpx.DecodeJSON(req, &body), httpx.ErrBadJSON)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`nope`))
	require.ErrorIs(t, httpx.DecodeJSON(req, &body), httpx.ErrBadJSON)
}
