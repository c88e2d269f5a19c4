package postgres

import (
	"context"
	"errors"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/jackc/pgx/v5"
)

var errNestedTx = errors.New("postgres: nested transactions are not supported")

type txStore struct {
	tx  pgx.Tx
	ctx context.Context
}

func (t *txStore) Commit() error   { return t.tx.Commit(t.ctx) }
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, errNestedTx
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return errNestedTx
}

func (t *txStore) AuthCodes() store.AuthCodes { return &authCodesRepo{db: t.tx} }
