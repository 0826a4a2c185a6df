package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderDescriptionMarkdown(t *testing.T) {
	t.Parallel()

	got := string(RenderDescription("Un t-shirt **classique** en coton premium."))
	require.Contains(t, got, "<strong>classique</strong>")
	require.True(t, strings.HasPrefix(got, "<p>"))
}

func TestRenderDescriptionStripsScripts(t *testing.T) {
	t.Parallel()

	got := string(RenderDescription("Hello <script>alert(1)</script> [x](javascript:alert(1))"))
	require.NotContains(t, got, "<script")
	require.NotContains(t, got, "javascript:")
}

func TestRenderDescriptionLinksAreNoFollow(t *testing.T) {
	t.Parallel()

	got := string(RenderDescription("Voir https://example.com/guide"))
	require.Contains(t, got, `href="https://example.com/guide"`)
	require.Contains(t, got, "nofollow")
}

func TestRenderDescriptionBlank(t *testing.T) {
	t.Parallel()

	require.Empty(t, RenderDescription("   "))
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Une veste légère et stylée", Excerpt("Une **veste** légère et stylée", 0))
	require.Equal(t, "Une veste…", Excerpt("Une veste légère", 9))
}

func TestExcerptUnescapesEntities(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Soldes d'été & plus", Excerpt("Soldes d'été & plus", 0))
}
