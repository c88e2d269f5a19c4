package codesdk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClient_Validate(t *testing.T) {
	usedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ValidateCodeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.Code {
		case "good-code-1234":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(ValidateCodeResponse{
				Success: true, CodeID: "c1", UserID: "u1", Type: CodeTypePasswordReset, UsedAt: usedAt,
			})
		default:
			NewAPIError(http.StatusBadRequest, ErrorCodeExpiredCode, "expired").WriteError(w)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")

	res, err := c.ValidatePasswordReset(t.Context(), "good-code-1234")
	require.NoError(t, err)
	require.Equal(t, "u1", res.UserID)
	require.Equal(t, usedAt, res.UsedAt)

	_, err = c.ValidatePasswordReset(t.Context(), "stale-code-1234")
	require.True(t, IsErrorCode(err, ErrorCodeExpiredCode))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "expired", apiErr.Description)
	require.False(t, apiErr.Retryable())
}

func TestClient_ErrorBodies(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantDesc string
	}{
		{"code failure", 400, `{"success":false,"error":"used_code","message":"already used"}`, ErrorCodeUsedCode, "already used"},
		{"transport failure", 401, `{"error":"invalid_token","error_description":"missing bearer token"}`, ErrorCodeInvalidToken, "missing bearer token"},
		{"not json", 502, `<html>bad gateway</html>`, ErrorCodeSystemError, "HTTP 502: Bad Gateway"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).GetLiveness(t.Context())
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tc.status, apiErr.StatusCode)
			require.Equal(t, tc.wantCode, apiErr.Code)
			require.Equal(t, tc.wantDesc, apiErr.Description)
		})
	}
}

func TestClient_AdminRequests(t *testing.T) {
	var gotAuth, gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery

		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(ListUserCodesResponse{Codes: []UserCode{{ID: "c1"}}})
		}
	}))
	defer srv.Close()

	base := NewClient(srv.URL)
	admin := base.WithToken("tok")

	res, err := admin.ListUserCodes(t.Context(), "user/1", CodeTypeEmailConfirmation)
	require.NoError(t, err)
	require.Len(t, res.Codes, 1)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "/auth/codes/users/user%2F1", gotPath)
	require.Equal(t, "type=email_confirmation", gotQuery)

	require.NoError(t, admin.RevokeCode(t.Context(), "c1"))
	require.Equal(t, "/auth/codes/c1", gotPath)

	// The original client stays anonymous.
	_, err = base.GetLiveness(t.Context())
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestClient_StatusQueryEscaping(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("code")
		_ = json.NewEncoder(w).Encode(CodeStatusResponse{Found: true, IsValid: true})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).GetCodeStatus(t.Context(), "a+b/c=")
	require.NoError(t, err)
	require.True(t, res.IsValid)
	require.Equal(t, "a+b/c=", got)
}
