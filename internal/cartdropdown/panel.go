package cartdropdown

import (
	"sort"
	"time"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

// Item is a rendered line item.
type Item struct {
	ID           string
	Title        string
	VariantTitle string
	Handle       string
	Thumbnail    string
	Quantity     int
	UnitPrice    string
	Total        string
	CreatedAt    string
}

// Panel is the view model of the header cart panel.
type Panel struct {
	Open       bool
	Empty      bool
	TotalItems int
	ShowBadge  bool
	// ItemsLabel is the i18n key for the item count ("cart.items.one" or "cart.items.other").
	ItemsLabel     string
	Items          []Item
	Subtotal       string
	AutoCloseAfter time.Duration
}

// BuildPanel renders a cart snapshot. A nil or item-less cart yields the
// empty state.
func BuildPanel(cart *commerce.Cart, open bool, f money.Formatter) Panel {
	total := cart.TotalItems()
	p := Panel{
		Open:           open,
		TotalItems:     total,
		ShowBadge:      total > 0,
		ItemsLabel:     "cart.items.other",
		AutoCloseAfter: DefaultCloseDelay,
	}
	if total == 1 {
		p.ItemsLabel = "cart.items.one"
	}
	if cart == nil || len(cart.Items) == 0 {
		p.Empty = true
		return p
	}
	for _, li := range SortItems(cart.Items) {
		p.Items = append(p.Items, Item{
			ID:           li.ID,
			Title:        firstNonEmpty(li.ProductTitle, li.Title),
			VariantTitle: li.VariantTitle,
			Handle:       li.ProductHandle,
			Thumbnail:    li.Thumbnail,
			Quantity:     li.Quantity,
			UnitPrice:    f.Format(li.UnitPrice, cart.CurrencyCode),
			Total:        f.Format(li.Total, cart.CurrencyCode),
			CreatedAt:    li.CreatedAt,
		})
	}
	p.Subtotal = f.Format(cart.Subtotal, cart.CurrencyCode)
	return p
}

// SortItems returns line items newest first. Timestamps are ISO-8601 so
// string order is time order.
func SortItems(items []commerce.LineItem) []commerce.LineItem {
	out := append([]commerce.LineItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
