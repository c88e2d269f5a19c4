package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
)

const authCodeColumns = `id, user_id, type, code_hash, created_at, expires_at, used_at`

type authCodesRepo struct {
	db dbtx
}

func (r *authCodesRepo) CreateAuthCode(ctx context.Context, c domain.AuthCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_codes (`+authCodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.UserID, string(c.Type), c.CodeHash, toUnix(c.CreatedAt), toUnix(c.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *authCodesRepo) GetAuthCodeByHash(ctx context.Context, hash string) (domain.AuthCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authCodeColumns+` FROM auth_codes WHERE code_hash = ?`, hash)
	return scanAuthCode(row)
}

func (r *authCodesRepo) GetAuthCodeByID(ctx context.Context, id string) (domain.AuthCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+authCodeColumns+` FROM auth_codes WHERE id = ?`, id)
	return scanAuthCode(row)
}

func (r *authCodesRepo) ListAuthCodesByUser(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
) ([]domain.AuthCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+authCodeColumns+` FROM auth_codes
		 WHERE user_id = ? AND (? = '' OR type = ?)
		 ORDER BY created_at DESC, id DESC`,
		userID, string(codeType), string(codeType),
	)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE auth_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		toUnix(usedAt), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *authCodesRepo) DeleteExpiredAuthCodes(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM auth_codes WHERE expires_at < ?`, toUnix(before))
}

func (r *authCodesRepo) DeleteUsedAuthCodes(ctx context.Context, usedBefore time.Time) (int64, error) {
	return r.exec(ctx,
		`DELETE FROM auth_codes WHERE used_at IS NOT NULL AND used_at < ?`, toUnix(usedBefore))
}

func (r *authCodesRepo) DeleteAuthCodesByUserAndType(
	ctx context.Context,
	userID string,
	codeType domain.CodeType,
) (int64, error) {
	return r.exec(ctx,
		`DELETE FROM auth_codes WHERE user_id = ? AND type = ?`, userID, string(codeType))
}

// LockUserCodes is a no-op: SQLite admits one writer at a time, so the
// delete inside a replacing transaction already blocks the next one.
func (r *authCodesRepo) LockUserCodes(ctx context.Context, userID string, codeType domain.CodeType) error {
	return nil
}

func (r *authCodesRepo) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthCode(row rowScanner) (domain.AuthCode, error) {
	var (
		c                    domain.AuthCode
		codeType             string
		createdAt, expiresAt int64
		usedAt               sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.UserID, &codeType, &c.CodeHash, &createdAt, &expiresAt, &usedAt); err != nil {
		return domain.AuthCode{}, mapNotFound(err)
	}

	c.Type = domain.CodeType(codeType)
	c.CreatedAt = fromUnix(createdAt)
	c.ExpiresAt = fromUnix(expiresAt)
	c.UsedAt = mapNullUnixPtr(usedAt)
	return c, nil
}
