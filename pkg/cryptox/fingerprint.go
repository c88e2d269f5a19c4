package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const fingerprintInfo = "authcodes/code-fingerprint/v1"

// ErrEmptyPepper is returned when a Fingerprinter is built without a secret.
var ErrEmptyPepper = errors.New("cryptox: empty pepper")

// Fingerprinter computes keyed HMAC-SHA256 fingerprints. The HMAC key is
// derived from the pepper with HKDF so the raw pepper never keys anything
// directly and can be shared with other derivations.
type Fingerprinter struct {
	key []byte
}

func NewFingerprinter(pepper string) (*Fingerprinter, error) {
	if pepper == "" {
		return nil, ErrEmptyPepper
	}

	key := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, []byte(pepper), nil, []byte(fingerprintInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	return &Fingerprinter{key: key}, nil
}

// Fingerprint returns the base64url HMAC of token (43 chars). A nil
// Fingerprinter falls back to FingerprintToken.
func (f *Fingerprinter) Fingerprint(token string) string {
	if f == nil {
		return FingerprintToken(token)
	}

	mac := hmac.New(sha256.New, f.key)
	_, _ = mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
