package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprinter(t *testing.T) {
	a, err := NewFingerprinter("pepper-a")
	require.NoError(t, err)
	b, err := NewFingerprinter("pepper-b")
	require.NoError(t, err)

	t.Run("deterministic per key", func(t *testing.T) {
		require.Equal(t, a.Fingerprint("code"), a.Fingerprint("code"))
		require.Len(t, a.Fingerprint("code"), 43)
	})

	t.Run("different peppers give different fingerprints", func(t *testing.T) {
		require.NotEqual(t, a.Fingerprint("code"), b.Fingerprint("code"))
	})

	t.Run("keyed differs from unkeyed", func(t *testing.T) {
		require.NotEqual(t, FingerprintToken("code"), a.Fingerprint("code"))
	})

	t.Run("nil falls back to sha256", func(t *testing.T) {
		var f *Fingerprinter
		require.Equal(t, FingerprintToken("code"), f.Fingerprint("code"))
	})
}

func TestNewFingerprinter_EmptyPepper(t *testing.T) {
	_, err := NewFingerprinter("")
	require.ErrorIs(t, err, ErrEmptyPepper)
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	first, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing pepper should be reused")
}

func TestLoadOrCreatePepper_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	_, err := LoadOrCreatePepper(path)
	require.ErrorIs(t, err, ErrEmptyPepper)
}

func TestLoadPepper(t *testing.T) {
	t.Run("missing file is not created", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pepper")

		_, err := LoadPepper(path)
		require.ErrorIs(t, err, os.ErrNotExist)
		require.NoFileExists(t, path)
	})

	t.Run("trims the stored value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pepper")
		require.NoError(t, os.WriteFile(path, []byte("stored-pepper\n"), 0600))

		pepper, err := LoadPepper(path)
		require.NoError(t, err)
		require.Equal(t, "stored-pepper", pepper)
	})
}
