package codesdk

import "time"

// Code types accepted by the API.
const (
	CodeTypeEmailConfirmation = "email_confirmation"
	CodeTypePasswordReset     = "password_reset"
)

// AdminScope is required on admin bearer tokens.
const AdminScope = "codes:admin"

// ============================================================================
// Validation
// ============================================================================

// ValidateCodeRequest is the body of every validate endpoint.
type ValidateCodeRequest struct {
	Code string `json:"code"`
}

// ValidateCodeResponse is returned when a code was consumed.
type ValidateCodeResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	CodeID  string    `json:"codeId"`
	UserID  string    `json:"userId"`
	Type    string    `json:"type"`
	UsedAt  time.Time `json:"usedAt"`
}

// CodeStatusResponse is the non-consuming view of a code.
type CodeStatusResponse struct {
	Found     bool      `json:"found"`
	IsValid   bool      `json:"isValid"`
	IsExpired bool      `json:"isExpired"`
	IsUsed    bool      `json:"isUsed"`
	Type      string    `json:"type,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	Message   string    `json:"message"`
}

// ============================================================================
// Delivery
// ============================================================================

// SendCodeRequest asks the service to issue a code and email it.
type SendCodeRequest struct {
	Email  string `json:"email"  validate:"required,email,max=254"`
	UserID string `json:"userId" validate:"required,max=128"`
}

// SendCodeResponse reports a sent email. The plaintext code is never
// returned over the API.
type SendCodeResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	MessageID string    `json:"messageId"`
	CodeID    string    `json:"codeId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ============================================================================
// Cleanup
// ============================================================================

type CleanupResponse struct {
	CleanedCount   int64 `json:"cleanedCount"`
	ExpiredDeleted int64 `json:"expiredDeleted"`
	UsedDeleted    int64 `json:"usedDeleted"`
	DurationMs     int64 `json:"durationMs"`
}

type CleanupStatusResponse struct {
	IsRunning        bool       `json:"isRunning"`
	IntervalMs       int64      `json:"intervalMs"`
	LastRunAt        *time.Time `json:"lastRunAt,omitempty"`
	LastCleanedCount *int64     `json:"lastCleanedCount,omitempty"`
	LastError        string     `json:"lastError,omitempty"`
}

// ============================================================================
// Admin
// ============================================================================

// UserCode is an issued code as seen by an admin. Hashes are never exposed.
type UserCode struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	Status    string     `json:"status"`
}

// Values of UserCode.Status.
const (
	CodeStatusValid   = "valid"
	CodeStatusUsed    = "used"
	CodeStatusExpired = "expired"
)

type ListUserCodesResponse struct {
	Codes []UserCode `json:"codes"`
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is only set on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Cleanup  string `json:"cleanup"`
}
