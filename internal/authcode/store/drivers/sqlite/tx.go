package sqlite

import (
	"context"
	"database/sql"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error { return nil }

// Ping is a no-op for transactions; the connection is already held.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) AuthCodes() store.AuthCodes { return &authCodesRepo{db: t.tx} }

// ApplyMigrations is a no-op; migrations run before any tx is started.
func (t *txStore) ApplyMigrations() error { return nil }
