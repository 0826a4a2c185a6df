package seo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductOffer(t *testing.T) {
	t.Parallel()

	payload := Product("Veste", "Légère", "https://shop.test/tn/products/veste", []string{"a.jpg"}, "MA-VLH-M-NOIR",
		Offer{Price: "120.000", Currency: "TND", InStock: true})
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON(payload)), &decoded))
	require.Equal(t, "Product", decoded["@type"])
	offer := decoded["offers"].(map[string]any)
	require.Equal(t, "120.000", offer["price"])
	require.Equal(t, "https://schema.org/InStock", offer["availability"])

	noOffer := Product("Veste", "", "", nil, "", Offer{})
	require.NotContains(t, noOffer, "offers")
	require.NotContains(t, noOffer, "image")
}

func TestBreadcrumbListPositions(t *testing.T) {
	t.Parallel()

	list := BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: "/tn"}, {Name: "Vestes", Item: "/tn/categories/vestes"}})
	items := list["itemListElement"].([]map[string]any)
	require.Equal(t, 2, items[1]["position"])
}

func TestJSONEscapesHTML(t *testing.T) {
	t.Parallel()

	out := string(JSON(Organization("</script><b>", "", "")))
	require.NotContains(t, out, "</script>")
}

func TestPageTitle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "M&A Collections", PageTitle(""))
	require.Equal(t, "Vestes | M&A Collections", PageTitle("Vestes"))
}
