package service

import (
	"errors"
	"fmt"
)

// ErrorKind is the wire-stable classification of a code failure.
type ErrorKind string

const (
	KindEmptyCode   ErrorKind = "empty_code"
	KindInvalidCode ErrorKind = "invalid_code"
	KindExpiredCode ErrorKind = "expired_code"
	KindUsedCode    ErrorKind = "used_code"
	KindSystem      ErrorKind = "system_error"
)

var (
	ErrEmptyCode   = errors.New("code is empty")
	ErrInvalidCode = errors.New("code is invalid")
	ErrExpiredCode = errors.New("code has expired")
	ErrUsedCode    = errors.New("code has already been used")

	// ErrSystem marks storage or infrastructure failures. Callers may retry.
	ErrSystem = errors.New("code service unavailable")

	ErrIssuance        = errors.New("failed to issue code")
	ErrInvalidUserID   = errors.New("user id is required")
	ErrInvalidCodeType = errors.New("invalid code type")
	ErrDeliveryFailed  = errors.New("failed to deliver code")
)

// KindOf classifies err. Anything that is not a known client error is a
// system error.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrEmptyCode):
		return KindEmptyCode
	case errors.Is(err, ErrInvalidCode):
		return KindInvalidCode
	case errors.Is(err, ErrExpiredCode):
		return KindExpiredCode
	case errors.Is(err, ErrUsedCode):
		return KindUsedCode
	default:
		return KindSystem
	}
}

// IsClientError reports whether err is caused by the presented code rather
// than by the service.
func IsClientError(err error) bool {
	return err != nil && KindOf(err) != KindSystem
}

func systemError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSystem, op, err)
}
