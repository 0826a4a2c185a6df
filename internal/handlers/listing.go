package handlers

import (
	"net/url"
	"strconv"

	"macollections.com/storefront/internal/catalog"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

// ListingData is the view model of the store, category and collection pages.
type ListingData struct {
	Title       string
	Description string
	Category    *commerce.Category
	Collection  *commerce.Collection
	// Subcategories are the direct children of Category.
	Subcategories []commerce.Category
	Entries       []catalog.Entry
	Pagination    catalog.Pagination
	Sort          string
	SortOptions   []SortOption
	BasePath      string
}

// SortOption is one entry of the sort menu.
type SortOption struct {
	Key      string
	LabelKey string
	Href     string
	Active   bool
}

// BuildListing prices, sorts and pages products. The listing is computed over
// the full fetched set so price sorting spans every page.
func BuildListing(basePath string, products []commerce.Product, sortKey string, page int, f money.Formatter) ListingData {
	sortKey = catalog.ParseSort(sortKey)
	entries := catalog.Resolve(products, f)
	catalog.Sort(entries, sortKey)
	p := catalog.Paginate(len(entries), page)

	data := ListingData{
		Entries:    catalog.Window(entries, p),
		Pagination: p,
		Sort:       sortKey,
		BasePath:   basePath,
	}
	for _, key := range catalog.SortOptions {
		data.SortOptions = append(data.SortOptions, SortOption{
			Key:      key,
			LabelKey: "sort." + key,
			Href:     ListingURL(basePath, key, 1),
			Active:   key == sortKey,
		})
	}
	return data
}

// PageURL links to another page of the same listing.
func (d ListingData) PageURL(page int) string {
	return ListingURL(d.BasePath, d.Sort, page)
}

// ListingURL builds a listing link, omitting default parameters.
func ListingURL(basePath, sortKey string, page int) string {
	q := url.Values{}
	if sortKey != "" && sortKey != catalog.SortCreatedAt {
		q.Set("sortBy", sortKey)
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}
