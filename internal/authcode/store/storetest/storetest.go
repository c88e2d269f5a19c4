// Package storetest holds the behavioural contract every store driver must
// satisfy. Drivers call Run from their own tests.
package storetest

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/domain"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/internal/authcode/store"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/cryptox"
	"github.com/CodeZobac/Scuzzy-goalkeeper-sub004/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. It is called once per subtest.
type Factory func(t *testing.T) store.Store

// Base is the fixed clock origin used by fixtures.
var Base = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// NewCode builds an unused code for userID expiring ttl after created.
func NewCode(userID string, codeType domain.CodeType, created time.Time, ttl time.Duration) domain.AuthCode {
	return domain.AuthCode{
		ID:        idx.NewAt(created).String(),
		UserID:    userID,
		Type:      codeType,
		CodeHash:  cryptox.FingerprintToken(cryptox.MustGenerateToken(cryptox.TokenSize192)),
		CreatedAt: created,
		ExpiresAt: created.Add(ttl),
	}
}

func Run(t *testing.T, newStore Factory) {
	t.Run("create and fetch", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		c := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base, 5*time.Minute)
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, c))

		byHash, err := s.AuthCodes().GetAuthCodeByHash(ctx, c.CodeHash)
		require.NoError(t, err)
		requireSameCode(t, c, byHash)

		byID, err := s.AuthCodes().GetAuthCodeByID(ctx, c.ID)
		require.NoError(t, err)
		requireSameCode(t, c, byID)
	})

	t.Run("missing code is not found", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AuthCodes().GetAuthCodeByHash(t.Context(), "nope")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.AuthCodes().GetAuthCodeByID(t.Context(), "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate hash is rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		a := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base, time.Minute)
		b := NewCode("user-2", domain.CodeTypePasswordReset, Base, time.Minute)
		b.CodeHash = a.CodeHash

		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, a))
		require.ErrorIs(t, s.AuthCodes().CreateAuthCode(ctx, b), store.ErrAlreadyExists)
	})

	t.Run("mark used succeeds once", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		c := NewCode("user-1", domain.CodeTypePasswordReset, Base, time.Minute)
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, c))

		ok, err := s.AuthCodes().MarkAuthCodeUsed(ctx, c.ID, Base.Add(time.Second))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = s.AuthCodes().MarkAuthCodeUsed(ctx, c.ID, Base.Add(2*time.Second))
		require.NoError(t, err)
		require.False(t, ok)

		got, err := s.AuthCodes().GetAuthCodeByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, got.UsedAt)
		require.True(t, got.UsedAt.Equal(Base.Add(time.Second)), "first writer's timestamp is kept")

		ok, err = s.AuthCodes().MarkAuthCodeUsed(ctx, "unknown", Base)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("concurrent mark used has one winner", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		c := NewCode("user-1", domain.CodeTypePasswordReset, Base, time.Minute)
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, c))

		const n = 16
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.AuthCodes().MarkAuthCodeUsed(ctx, c.ID, time.Now().UTC())
				if err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()

		require.EqualValues(t, 1, wins.Load())
	})

	t.Run("delete expired", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		old := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base, time.Minute)
		fresh := NewCode("user-1", domain.CodeTypePasswordReset, Base, time.Hour)
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, old))
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, fresh))

		n, err := s.AuthCodes().DeleteExpiredAuthCodes(ctx, Base)
		require.NoError(t, err)
		require.Zero(t, n)

		n, err = s.AuthCodes().DeleteExpiredAuthCodes(ctx, Base.Add(2*time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		n, err = s.AuthCodes().DeleteExpiredAuthCodes(ctx, Base.Add(2*time.Minute))
		require.NoError(t, err)
		require.Zero(t, n, "second pass has nothing left to delete")

		_, err = s.AuthCodes().GetAuthCodeByID(ctx, fresh.ID)
		require.NoError(t, err)
	})

	t.Run("delete used before cutoff", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		used := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base, 48*time.Hour)
		unused := NewCode("user-1", domain.CodeTypePasswordReset, Base, 48*time.Hour)
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, used))
		require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, unused))

		ok, err := s.AuthCodes().MarkAuthCodeUsed(ctx, used.ID, Base.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, ok)

		n, err := s.AuthCodes().DeleteUsedAuthCodes(ctx, Base)
		require.NoError(t, err)
		require.Zero(t, n)

		n, err = s.AuthCodes().DeleteUsedAuthCodes(ctx, Base.Add(25*time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.AuthCodes().GetAuthCodeByID(ctx, unused.ID)
		require.NoError(t, err)
	})

	t.Run("delete and list by user and type", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		a1 := NewCode("user-a", domain.CodeTypeEmailConfirmation, Base, time.Hour)
		a2 := NewCode("user-a", domain.CodeTypeEmailConfirmation, Base.Add(time.Second), time.Hour)
		a3 := NewCode("user-a", domain.CodeTypePasswordReset, Base.Add(2*time.Second), time.Hour)
		b1 := NewCode("user-b", domain.CodeTypeEmailConfirmation, Base, time.Hour)
		for _, c := range []domain.AuthCode{a1, a2, a3, b1} {
			require.NoError(t, s.AuthCodes().CreateAuthCode(ctx, c))
		}

		all, err := s.AuthCodes().ListAuthCodesByUser(ctx, "user-a", "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, a3.ID, all[0].ID, "newest first")

		confirmations, err := s.AuthCodes().ListAuthCodesByUser(ctx, "user-a", domain.CodeTypeEmailConfirmation)
		require.NoError(t, err)
		require.Len(t, confirmations, 2)

		n, err := s.AuthCodes().DeleteAuthCodesByUserAndType(ctx, "user-a", domain.CodeTypeEmailConfirmation)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		rest, err := s.AuthCodes().ListAuthCodesByUser(ctx, "user-a", "")
		require.NoError(t, err)
		require.Len(t, rest, 1)
		require.Equal(t, a3.ID, rest[0].ID)

		other, err := s.AuthCodes().ListAuthCodesByUser(ctx, "user-b", "")
		require.NoError(t, err)
		require.Len(t, other, 1)
	})

	t.Run("concurrent replacing transactions leave one code", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		const n = 8
		var (
			wg     sync.WaitGroup
			failed atomic.Int32
		)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base.Add(time.Duration(i)*time.Second), time.Hour)
				err := s.WithTx(ctx, func(tx store.Tx) error {
					if err := tx.AuthCodes().LockUserCodes(ctx, c.UserID, c.Type); err != nil {
						return err
					}
					if _, err := tx.AuthCodes().DeleteAuthCodesByUserAndType(ctx, c.UserID, c.Type); err != nil {
						return err
					}
					return tx.AuthCodes().CreateAuthCode(ctx, c)
				})
				if err != nil {
					failed.Add(1)
				}
			}()
		}
		wg.Wait()

		require.Zero(t, failed.Load())
		codes, err := s.AuthCodes().ListAuthCodesByUser(ctx, "user-1", domain.CodeTypeEmailConfirmation)
		require.NoError(t, err)
		require.Len(t, codes, 1)
	})

	t.Run("transaction commit and rollback", func(t *testing.T) {
		s := newStore(t)
		ctx := t.Context()

		kept := NewCode("user-1", domain.CodeTypeEmailConfirmation, Base, time.Hour)
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.AuthCodes().CreateAuthCode(ctx, kept)
		})
		require.NoError(t, err)

		dropped := NewCode("user-1", domain.CodeTypePasswordReset, Base, time.Hour)
		err = s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.AuthCodes().CreateAuthCode(ctx, dropped); err != nil {
				return err
			}
			return store.ErrAlreadyExists
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)

		_, err = s.AuthCodes().GetAuthCodeByID(ctx, kept.ID)
		require.NoError(t, err)
		_, err = s.AuthCodes().GetAuthCodeByID(ctx, dropped.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(t.Context()))
	})
}

func requireSameCode(t *testing.T, want, got domain.AuthCode) {
	t.Helper()

	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.UserID, got.UserID)
	require.Equal(t, want.Type, got.Type)
	require.Equal(t, want.CodeHash, got.CodeHash)
	require.WithinDuration(t, want.CreatedAt, got.CreatedAt, time.Microsecond)
	require.WithinDuration(t, want.ExpiresAt, got.ExpiresAt, time.Microsecond)
	require.Nil(t, got.UsedAt)
}
