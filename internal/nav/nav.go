// Package nav builds header navigation and breadcrumb trails.
package nav

import (
	"path"
	"strings"

	"macollections.com/storefront/internal/commerce"
)

// Item is a header navigation link. When LabelKey is empty, Label is shown as is.
type Item struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// sections maps first path segments below the country code to label keys.
var sections = map[string]string{
	"store":       "nav.store",
	"categories":  "nav.categories",
	"collections": "nav.collections",
	"products":    "nav.store",
	"cart":        "nav.cart",
	"checkout":    "nav.checkout",
	"order":       "nav.order",
}

// Build renders the header links for the country code: store, then every
// top-level category. Categories with a parent are excluded.
func Build(cc, currentPath string, categories []commerce.Category, hidden string) []Item {
	base := "/" + cc
	items := []Item{{Href: base + "/store", LabelKey: "nav.store"}}
	for _, c := range categories {
		if !c.IsTopLevel() || c.Handle == "" {
			continue
		}
		if hidden != "" && strings.Contains(strings.ToLower(c.Handle), hidden) {
			continue
		}
		items = append(items, Item{Href: base + "/categories/" + c.Handle, Label: c.Name})
	}
	for i := range items {
		items[i].Active = isActive(items[i].Href, currentPath)
	}
	return items
}

// Footer lists the footer's category and collection links. Categories follow
// the header rules without the store link; collections need a handle.
func Footer(cc string, categories []commerce.Category, collections []commerce.Collection, hidden string) (cats, cols []Item) {
	base := "/" + cc
	for _, it := range Build(cc, "", categories, hidden) {
		if it.LabelKey == "" {
			cats = append(cats, it)
		}
	}
	for _, c := range collections {
		if c.Handle == "" {
			continue
		}
		cols = append(cols, Item{Href: base + "/collections/" + c.Handle, Label: c.Title})
	}
	return cats, cols
}

func isActive(itemPath, currentPath string) bool {
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds a trail from the path: home, the section, then each
// deeper segment prettified.
func Breadcrumbs(cc, currentPath string) []Crumb {
	home := "/" + cc
	clean := path.Clean("/" + strings.TrimPrefix(currentPath, "/"))
	crumbs := []Crumb{{Href: home, LabelKey: "nav.home", Active: clean == home || clean == "/"}}
	rest := strings.Trim(strings.TrimPrefix(clean, home), "/")
	if rest == "" {
		return crumbs
	}
	parts := strings.Split(rest, "/")
	href := home
	for i, part := range parts {
		href += "/" + part
		c := Crumb{Href: href, Label: titleFromSegment(part), Active: i == len(parts)-1}
		if i == 0 {
			c.LabelKey = sections[part]
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

// CategoryTrail returns home followed by the category's ancestors and the
// category itself, labelled with their names.
func CategoryTrail(cc string, c commerce.Category) []Crumb {
	home := "/" + cc
	crumbs := []Crumb{{Href: home, LabelKey: "nav.home"}}
	for _, a := range c.Ancestors() {
		crumbs = append(crumbs, Crumb{Href: home + "/categories/" + a.Handle, Label: a.Name})
	}
	return append(crumbs, Crumb{Href: home + "/categories/" + c.Handle, Label: c.Name, Active: true})
}

// ProductTrail returns home, the product's first category when it has one,
// and the product.
func ProductTrail(cc string, p commerce.Product) []Crumb {
	home := "/" + cc
	crumbs := []Crumb{{Href: home, LabelKey: "nav.home"}, {Href: home + "/store", LabelKey: "nav.store"}}
	if len(p.Categories) > 0 {
		c := p.Categories[0]
		crumbs = append(crumbs, Crumb{Href: home + "/categories/" + c.Handle, Label: c.Name})
	}
	return append(crumbs, Crumb{Href: home + "/products/" + p.Handle, Label: p.Title, Active: true})
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
