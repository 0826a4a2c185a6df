// Package catalog sorts and pages product listings for the store, category
// and collection pages.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/pricing"
)

// PageSize is the number of products per listing page.
const PageSize = 12

// Sort options.
const (
	SortCreatedAt = "created_at"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// SortOptions lists the accepted sort keys in menu order.
var SortOptions = []string{SortCreatedAt, SortPriceAsc, SortPriceDesc}

// ParseSort normalizes a sort key; unknown values become SortCreatedAt.
func ParseSort(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for _, opt := range SortOptions {
		if raw == opt {
			return opt
		}
	}
	return SortCreatedAt
}

// Entry is a listed product with its resolved display price.
type Entry struct {
	Product  commerce.Product
	Price    pricing.ProductPrice
	HasPrice bool
}

// Resolve prices every product.
func Resolve(products []commerce.Product, f money.Formatter) []Entry {
	out := make([]Entry, 0, len(products))
	for _, p := range products {
		e := Entry{Product: p}
		e.Price, e.HasPrice = pricing.Cheapest(p, f)
		out = append(out, e)
	}
	return out
}

// Sort orders entries in place. Newest first for SortCreatedAt; by cheapest
// price otherwise, with unpriced products last.
func Sort(entries []Entry, key string) {
	switch ParseSort(key) {
	case SortPriceAsc:
		sort.SliceStable(entries, func(i, j int) bool { return priceLess(entries[i], entries[j], false) })
	case SortPriceDesc:
		sort.SliceStable(entries, func(i, j int) bool { return priceLess(entries[i], entries[j], true) })
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Product.CreatedAt > entries[j].Product.CreatedAt
		})
	}
}

func priceLess(a, b Entry, desc bool) bool {
	if a.HasPrice != b.HasPrice {
		return a.HasPrice
	}
	if !a.HasPrice {
		return false
	}
	if desc {
		return a.Price.CalculatedAmount.GreaterThan(b.Price.CalculatedAmount)
	}
	return a.Price.CalculatedAmount.LessThan(b.Price.CalculatedAmount)
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
	Pages      []int
}

// Offset returns the first item index of the page.
func (p Pagination) Offset() int { return (p.Page - 1) * PageSize }

// Paginate clamps page into range for total items.
func Paginate(total, page int) Pagination {
	if total < 0 {
		total = 0
	}
	pages := (total + PageSize - 1) / PageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	out := Pagination{
		Page:       page,
		TotalPages: pages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
	if out.HasPrev {
		out.PrevPage = page - 1
	}
	if out.HasNext {
		out.NextPage = page + 1
	}
	for i := 1; i <= pages; i++ {
		out.Pages = append(out.Pages, i)
	}
	return out
}

// ParsePage reads a 1-based page number, defaulting to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window returns the slice of entries shown on the page.
func Window(entries []Entry, p Pagination) []Entry {
	start := p.Offset()
	if start >= len(entries) {
		return nil
	}
	end := min(start+PageSize, len(entries))
	return entries[start:end]
}
