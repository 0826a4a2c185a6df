// Package seo carries page metadata and schema.org payloads.
package seo

import "html/template"

// SiteName is the storefront brand.
const SiteName = "M&A Collections"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	OG          OpenGraph
	JSONLD      []template.JS
}

// PageTitle suffixes title with the site name unless it already is the site title.
func PageTitle(title string) string {
	if title == "" {
		return SiteName
	}
	return title + " | " + SiteName
}
