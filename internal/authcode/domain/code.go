package domain

import (
	"errors"
	"strings"
	"time"
)

// CodeType scopes an AuthCode to one purpose. A code issued for one type
// never validates as another.
type CodeType string

const (
	CodeTypeEmailConfirmation CodeType = "email_confirmation"
	CodeTypePasswordReset     CodeType = "password_reset"
)

var ErrUnknownCodeType = errors.New("unknown code type")

// CodeTypes lists every supported type.
func CodeTypes() []CodeType {
	return []CodeType{CodeTypeEmailConfirmation, CodeTypePasswordReset}
}

// ParseCodeType accepts the wire form of a code type.
func ParseCodeType(s string) (CodeType, error) {
	t := CodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrUnknownCodeType
	}
	return t, nil
}

func (t CodeType) Valid() bool {
	switch t {
	case CodeTypeEmailConfirmation, CodeTypePasswordReset:
		return true
	}
	return false
}

func (t CodeType) String() string { return string(t) }

// AuthCode is a persisted single-use code. Only the keyed fingerprint of the
// plaintext is stored; UsedAt is set at most once.
type AuthCode struct {
	ID        string
	UserID    string
	Type      CodeType
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// IsExpiredAt reports now > ExpiresAt. A code is still valid at the exact
// expiry instant.
func (c AuthCode) IsExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c AuthCode) IsUsed() bool {
	return c.UsedAt != nil
}

func (c AuthCode) IsValidAt(now time.Time) bool {
	return !c.IsExpiredAt(now) && !c.IsUsed()
}

// CodeStatus is the non-consuming view of a code returned by status lookups.
type CodeStatus struct {
	Found     bool
	Valid     bool
	Expired   bool
	Used      bool
	Type      CodeType
	ExpiresAt time.Time
}

// StatusAt derives the status of c at now.
func (c AuthCode) StatusAt(now time.Time) CodeStatus {
	return CodeStatus{
		Found:     true,
		Valid:     c.IsValidAt(now),
		Expired:   c.IsExpiredAt(now),
		Used:      c.IsUsed(),
		Type:      c.Type,
		ExpiresAt: c.ExpiresAt,
	}
}
