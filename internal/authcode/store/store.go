package store

import (
	"context"
	"errors"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Repositories hang off it so a Tx exposes exactly
// the same surface as the Store it came from.
type Store interface {
	AuthCodes() AuthCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise. fn must use the Tx it is handed, not the
	// outer Store.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type AuthCodes interface {
	// CreateAuthCode inserts a freshly issued code. Returns ErrAlreadyExists
	// when the id or code hash collides.
	CreateAuthCode(ctx context.Context, code domain.AuthCode) error

	// GetAuthCodeByHash returns the code regardless of used/expired state.
	GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthCode, error)

	// GetAuthCodeByID returns the code regardless of used/expired state.
	GetAuthCodeByID(ctx context.Context, id string) (domain.AuthCode, error)

	// ListAuthCodesByUser returns a user's codes newest first. An empty
	// codeType lists every type.
	ListAuthCodesByUser(ctx context.Context, userID string, codeType domain.CodeType) ([]domain.AuthCode, error)

	// MarkAuthCodeUsed sets used_at only if it is still unset, in a single
	// conditional update. It reports whether this call won.
	MarkAuthCodeUsed(ctx context.Context, id string, usedAt time.Time) (bool, error)

	// DeleteExpiredAuthCodes removes codes with expires_at < before.
	DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int64, error)

	// DeleteUsedAuthCodes removes consumed codes with used_at < usedBefore.
	DeleteUsedAuthCodes(ctx context.Context, usedBefore time.Time) (int64, error)

	// LockUserCodes serialises writers of (userID, codeType) until the
	// enclosing transaction ends. Outside a Tx it has no lasting effect.
	LockUserCodes(ctx context.Context, userID string, codeType domain.CodeType) error

	// DeleteAuthCodesByUserAndType removes every code of codeType for userID.
	DeleteAuthCodesByUserAndType(ctx context.Context, userID string, codeType domain.CodeType) (int64, error)
}
