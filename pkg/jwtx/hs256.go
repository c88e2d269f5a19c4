package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// HS256 signs and verifies tokens with a shared secret. Operator tokens are
// minted and checked by the same deployment, so no key distribution is needed.
type HS256 struct {
	secret []byte
	issuer string
}

func NewHS256(secret, issuer string) (*HS256, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	return &HS256{secret: []byte(secret), issuer: issuer}, nil
}

func (h *HS256) Sign(c Claims) (string, error) {
	if c.Issuer == "" {
		c.Issuer = h.issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(h.secret)
}

func (h *HS256) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, ErrMalformed
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
