// Package handlers builds the view models rendered by the storefront templates.
package handlers

import (
	"macollections.com/storefront/internal/cartdropdown"
	"macollections.com/storefront/internal/httpx"
	"macollections.com/storefront/internal/nav"
	"macollections.com/storefront/internal/seo"
)

// PageData is the layout view model shared by every full page.
type PageData struct {
	Lang        string
	CountryCode string
	Path        string
	SEO         seo.Meta
	CSRFToken   string

	Nav         []nav.Item
	Breadcrumbs []nav.Crumb
	// Footer link groups; either may be empty.
	FooterCategories  []nav.Item
	FooterCollections []nav.Item
	// Cart is the header dropdown's initial state.
	Cart cartdropdown.Panel

	// Empty renders the layout without page content (unresolvable region).
	Empty bool
	Error *httpx.Error

	// Per-page payload; one of the *Data types of this package.
	Content any
}
