package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func load(t *testing.T) *Bundle {
	t.Helper()
	b, err := Load("../../locales", "en", []string{"en", "fr"})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	t.Parallel()

	b := load(t)
	require.Equal(t, "fr", b.Resolve("en;q=0.8, fr;q=0.9"))
	require.Equal(t, "fr", b.Resolve("fr-TN,fr;q=0.9,ar;q=0.8"))
	require.Equal(t, "en", b.Resolve("de-DE"))
	require.Equal(t, "en", b.Resolve(""))
	require.Equal(t, "en", b.Resolve(";;;"))
}

func TestTranslateFallsBack(t *testing.T) {
	t.Parallel()

	b := load(t)
	require.Equal(t, "Votre panier est vide", b.T("fr", "cart.empty"))
	require.Equal(t, "Your cart is empty", b.T("en", "cart.empty"))
	require.Equal(t, "Your cart is empty", b.T("de", "cart.empty"))
	require.Equal(t, "missing.key", b.T("fr", "missing.key"))
	require.Equal(t, "+3 more", b.Tf("en", "showcase.more", 3))
}

func TestLoadRequiresFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Load(dir, "en", []string{"en"})
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"a":"b"}`), 0o600))
	b, err := Load(dir, "en", []string{"en", "fr"})
	require.NoError(t, err)
	require.Equal(t, []string{"en"}, b.Supported())
	require.False(t, b.IsSupported("fr"))
}

func TestBundlesShareKeys(t *testing.T) {
	t.Parallel()

	b := load(t)
	for key := range b.dict["en"] {
		_, ok := b.dict["fr"][key]
		require.Truef(t, ok, "fr bundle misses %q", key)
	}
}
