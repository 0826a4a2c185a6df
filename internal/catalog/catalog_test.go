package catalog

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

func listed(id, created string, price int64) commerce.Product {
	p := commerce.Product{ID: id, CreatedAt: created}
	if price >= 0 {
		p.Variants = []commerce.Variant{{ID: id, CalculatedPrice: &commerce.CalculatedPrice{
			CalculatedAmount: decimal.NewFromInt(price),
			CurrencyCode:     "tnd",
		}}}
	}
	return p
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Product.ID)
	}
	return out
}

func TestSort(t *testing.T) {
	t.Parallel()

	products := []commerce.Product{
		listed("veste", "2024-01-03T00:00:00Z", 120),
		listed("free", "2024-01-01T00:00:00Z", -1),
		listed("tee", "2024-01-05T00:00:00Z", 35),
		listed("chino", "2024-01-02T00:00:00Z", 89),
	}
	f := money.NewFormatter("en")

	tests := []struct {
		key  string
		want []string
	}{
		{key: "", want: []string{"tee", "veste", "chino", "free"}},
		{key: SortPriceAsc, want: []string{"tee", "chino", "veste", "free"}},
		{key: SortPriceDesc, want: []string{"veste", "chino", "tee", "free"}},
		{key: "bogus", want: []string{"tee", "veste", "chino", "free"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()
			entries := Resolve(products, f)
			Sort(entries, tc.key)
			require.Equal(t, tc.want, ids(entries))
		})
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	p := Paginate(30, 2)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasPrev)
	require.True(t, p.HasNext)
	require.Equal(t, 1, p.PrevPage)
	require.Equal(t, 3, p.NextPage)
	require.Equal(t, 12, p.Offset())
	require.Equal(t, []int{1, 2, 3}, p.Pages)

	p = Paginate(30, 99)
	require.Equal(t, 3, p.Page)
	require.False(t, p.HasNext)

	p = Paginate(0, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 1, p.TotalPages)
	require.False(t, p.HasPrev)
	require.False(t, p.HasNext)
}

func TestWindow(t *testing.T) {
	t.Parallel()

	var products []commerce.Product
	for i := 0; i < 14; i++ {
		products = append(products, listed(fmt.Sprintf("p%02d", i), "", 10))
	}
	entries := Resolve(products, money.NewFormatter("en"))

	require.Len(t, Window(entries, Paginate(len(entries), 1)), 12)
	second := Window(entries, Paginate(len(entries), 2))
	require.Equal(t, []string{"p12", "p13"}, ids(second))
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, ParsePage(""))
	require.Equal(t, 1, ParsePage("-3"))
	require.Equal(t, 1, ParsePage("abc"))
	require.Equal(t, 4, ParsePage(" 4 "))
}
