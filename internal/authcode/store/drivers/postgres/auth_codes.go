package postgres

import (
	"context"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/jackc/pgx/v5"
)

const authCodeColumns = `id, user_id, type, code_hash, created_at, expires_at, used_at`

const (
	insertAuthCodeSQL = `INSERT INTO auth_codes (` + authCodeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)`

	getAuthCodeByHashSQL = `SELECT ` + authCodeColumns + ` FROM auth_codes WHERE code_hash = $1`

	getAuthCodeByIDSQL = `SELECT ` + authCodeColumns + ` FROM auth_codes WHERE id = $1`

	listAuthCodesByUserSQL = `SELECT ` + authCodeColumns + ` FROM auth_codes
		WHERE user_id = $1 AND ($2::text = '' OR type = $2::text)
		ORDER BY created_at DESC, id DESC`

	markAuthCodeUsedSQL = `UPDATE auth_codes SET used_at = $2 WHERE id = $1 AND used_at IS NULL`

	deleteExpiredAuthCodesSQL = `DELETE FROM auth_codes WHERE expires_at < $1`

	deleteUsedAuthCodesSQL = `DELETE FROM auth_codes WHERE used_at IS NOT NULL AND used_at < $1`

	deleteAuthCodesByUserAndTypeSQL = `DELETE FROM auth_codes WHERE user_id = $1 AND type = $2`

	lockUserCodesSQL = `SELECT pg_advisory_xact_lock(hashtext($1::text || ':' || $2::text))`
)

type authCodesRepo struct {
	db querier
}

func (r *authCodesRepo) CreateAuthCode(ctx context.Context, c domain.AuthCode) error {
	_, err := r.db.Exec(ctx, insertAuthCodeSQL,
		c.ID, c.UserID, string(c.Type), c.CodeHash, c.CreatedAt.UTC(), c.ExpiresAt.UTC())
	return mapConstraint(err)
}

func (r *authCodesRepo) GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthCode, error) {
	return scanAuthCode(r.db.QueryRow(ctx, getAuthCodeByHashSQL, hash))
}

func (r *authCodesRepo) GetAuthCodeByID(ctx context.Context, id string) (domain.AuthCode, error) {
	return scanAuthCode(r.db.QueryRow(ctx, getAuthCodeByIDSQL, id))
}

func (r *authCodesRepo) ListAuthCodesByUser(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
) ([]domain.AuthCode, error) {
	rows, err := r.db.Query(ctx, listAuthCodesByUserSQL, userID, string(codeType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuthCode
	for rows.Next() {
		c, err := scanAuthCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *authCodesRepo) MarkAuthCodeUsed(ctx context.Context, id string, usedAt time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, markAuthCodeUsedSQL, id, usedAt.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *authCodesRepo) DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, deleteExpiredAuthCodesSQL, before.UTC())
}

func (r *authCodesRepo) DeleteUsedAuthCodes(ctx context.Context, usedBefore time.Time) (int64, error) {
	return r.exec(ctx, deleteUsedAuthCodesSQL, usedBefore.UTC())
}

func (r *authCodesRepo) DeleteAuthCodesByUserAndType(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
) (int64, error) {
	return r.exec(ctx, deleteAuthCodesByUserAndTypeSQL, userID, string(codeType))
}

// LockUserCodes takes a transaction-scoped advisory lock. READ COMMITTED
// alone lets two replacing transactions both delete nothing and both insert.
func (r *authCodesRepo) LockUserCodes(ctx context.Context, userID string, codeType domain.CodeType) error {
	_, err := r.db.Exec(ctx, lockUserCodesSQL, userID, string(codeType))
	return err
}

func (r *authCodesRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAuthCode(row pgx.Row) (domain.AuthCode, error) {
	var (
		c        domain.AuthCode
		codeType string
		usedAt   *time.Time
	)
	if err := row.Scan(&c.ID, &c.UserID, &codeType, &c.CodeHash, &c.CreatedAt, &c.ExpiresAt, &usedAt); err != nil {
		return domain.AuthCode{}, mapNotFound(err)
	}

	c.Type = domain.CodeType(codeType)
	c.CreatedAt = c.CreatedAt.UTC()
	c.ExpiresAt = c.ExpiresAt.UTC()
	if usedAt != nil {
		u := usedAt.UTC()
		c.UsedAt = &u
	}
	return c, nil
}
