package carousel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSlides(t *testing.T) {
	t.Parallel()

	slides, err := ParseSlides([]byte(`
slides:
  - image: https://img.example/a.jpg
    title: Soldes d'été
    subtitle: Jusqu'à -30%
    cta: {text: Voir, href: /store}
    cta_secondary: {text: Femmes, href: /categories/femmes}
  - title: missing image
`))
	require.NoError(t, err)
	require.Len(t, slides, 1)
	require.Equal(t, "Soldes d'été", slides[0].Title)
	require.Equal(t, "/categories/femmes", slides[0].CTASecondary.Href)
}

func TestParseSlidesFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	slides, err := ParseSlides([]byte("slides: []\n"))
	require.NoError(t, err)
	require.Equal(t, DefaultSlides(), slides)

	_, err = ParseSlides([]byte("slides: [\n"))
	require.Error(t, err)
}

func TestLoadSlides(t *testing.T) {
	t.Parallel()

	slides, err := LoadSlides(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Len(t, slides, 3)

	path := filepath.Join(t.TempDir(), "hero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slides:\n  - image: /a.jpg\n    title: A\n"), 0o600))
	slides, err = LoadSlides(path)
	require.NoError(t, err)
	require.Len(t, slides, 1)
	require.Equal(t, "A", slides[0].Title)
}
