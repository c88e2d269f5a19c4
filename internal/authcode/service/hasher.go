package service

import (
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
)

// Hasher turns a plaintext code into the fingerprint stored in the database.
// *cryptox.Fingerprinter is the production implementation.
type Hasher interface {
	Fingerprint(code string) string
}

var _ Hasher = (*cryptox.Fingerprinter)(nil)

const (
	// DefaultCodeTTL applies when no TTL is configured or requested.
	DefaultCodeTTL = 5 * time.Minute

	// DefaultStoreTimeout bounds each store call made on behalf of a caller.
	DefaultStoreTimeout = 30 * time.Second

	// Plaintext codes outside these bounds are rejected without a lookup.
	MinCodeLength = 8
	MaxCodeLength = 64
)

func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}
