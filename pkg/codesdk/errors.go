package codesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/httpx"
)

// Error codes returned in the "error" field.
const (
	ErrorCodeEmptyCode   = "empty_code"
	ErrorCodeInvalidCode = "invalid_code"
	ErrorCodeExpiredCode = "expired_code"
	ErrorCodeUsedCode    = "used_code"
	ErrorCodeSystemError = "system_error"

	ErrorCodeNotFound          = "not_found"
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeDeliveryFailed    = "delivery_failed"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeInsufficientScope = "insufficient_scope"
	ErrorCodeRateLimited       = "rate_limit_exceeded"
)

// ErrorResponse is the body of every non-2xx response. Code failures fill
// Message; transport-level failures fill ErrorDescription. CodeID is set
// when a code was issued but could not be delivered.
type ErrorResponse struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	Message          string `json:"message,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	CodeID           string `json:"codeId,omitempty"`
}

// APIError is a failed API call. The server also uses it to write
// code-failure responses.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	CodeID      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Retryable reports whether the call may succeed if repeated unchanged.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// WriteError writes e as a code-failure response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Success: false,
		Error:   e.Code,
		Message: e.Description,
		CodeID:  e.CodeID,
	})
}

func NewAPIError(statusCode int, code, description string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Description: description}
}

// IsErrorCode reports whether err is an *APIError with the given code.
func IsErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		desc := errResp.Message
		if desc == "" {
			desc = errResp.ErrorDescription
		}
		return &APIError{StatusCode: resp.StatusCode, Code: errResp.Error, Description: desc, CodeID: errResp.CodeID}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeSystemError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
