package codesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the authcodes service. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	token string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithToken returns a copy of c that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// ValidateEmailConfirmation consumes an email confirmation code.
func (c *Client) ValidateEmailConfirmation(ctx context.Context, code string) (*ValidateCodeResponse, error) {
	return c.validate(ctx, "/auth/codes/validate/email-confirmation", code)
}

// ValidatePasswordReset consumes a password reset code.
func (c *Client) ValidatePasswordReset(ctx context.Context, code string) (*ValidateCodeResponse, error) {
	return c.validate(ctx, "/auth/codes/validate/password-reset", code)
}

// ValidateCode consumes a code of either type.
func (c *Client) ValidateCode(ctx context.Context, code string) (*ValidateCodeResponse, error) {
	return c.validate(ctx, "/auth/codes/validate", code)
}

func (c *Client) validate(ctx context.Context, path, code string) (*ValidateCodeResponse, error) {
	var out ValidateCodeResponse
	if err := c.postJSON(ctx, path, ValidateCodeRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCodeStatus never consumes the code. An unknown code is an *APIError
// with status 404.
func (c *Client) GetCodeStatus(ctx context.Context, code string) (*CodeStatusResponse, error) {
	var out CodeStatusResponse
	path := "/auth/codes/status?" + url.Values{"code": {code}}.Encode()
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendEmailConfirmation(ctx context.Context, req SendCodeRequest) (*SendCodeResponse, error) {
	var out SendCodeResponse
	if err := c.postJSON(ctx, "/auth/codes/send/email-confirmation", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendPasswordReset(ctx context.Context, req SendCodeRequest) (*SendCodeResponse, error) {
	var out SendCodeResponse
	if err := c.postJSON(ctx, "/auth/codes/send/password-reset", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PerformCleanup triggers a cleanup run. Admin.
func (c *Client) PerformCleanup(ctx context.Context) (*CleanupResponse, error) {
	var out CleanupResponse
	if err := c.postJSON(ctx, "/auth/codes/cleanup", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCleanupStatus reports the scheduler state. Admin.
func (c *Client) GetCleanupStatus(ctx context.Context) (*CleanupStatusResponse, error) {
	var out CleanupStatusResponse
	if err := c.getJSON(ctx, "/auth/codes/cleanup/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserCodes lists a user's codes, newest first. An empty codeType lists
// every type. Admin.
func (c *Client) ListUserCodes(ctx context.Context, userID, codeType string) (*ListUserCodesResponse, error) {
	path := "/auth/codes/users/" + url.PathEscape(userID)
	if codeType != "" {
		path += "?" + url.Values{"type": {codeType}}.Encode()
	}

	var out ListUserCodesResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeCode makes a code unusable. Admin.
func (c *Client) RevokeCode(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/auth/codes/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/livez", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.getJSON(ctx, "/readyz", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

func (c *Client) postJSON(ctx context.Context, path string, body, target any) error {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	resp, err := c.do(ctx, http.MethodPost, path, r)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// decodeJSON reads the body once and returns an *APIError for any status
// other than expectedStatus.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		if apiErr := parseErrorResponse(resp, body); apiErr != nil {
			return apiErr
		}
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeSystemError,
			Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func checkStatusNoContent(resp *http.Response) error {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		if apiErr := parseErrorResponse(resp, body); apiErr != nil {
			return apiErr
		}
		return &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeSystemError, Description: "unexpected status"}
	}
	return nil
}
