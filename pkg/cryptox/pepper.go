package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const pepperSize = 32

// LoadPepper reads the pepper stored at path. A missing file is reported
// as an error wrapping os.ErrNotExist.
func LoadPepper(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	pepper := strings.TrimSpace(string(data))
	if pepper == "" {
		return "", ErrEmptyPepper
	}
	return pepper, nil
}

// LoadOrCreatePepper reads the pepper stored at path, generating and
// persisting a new random one (mode 0600) when the file does not exist.
func LoadOrCreatePepper(path string) (string, error) {
	path = filepath.Clean(path)

	pepper, err := LoadPepper(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return pepper, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}

	buf := make([]byte, pepperSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	pepper = base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(path, []byte(pepper), 0600); err != nil {
		return "", err
	}
	return pepper, nil
}
