// Package showcase composes the home page's shop-by-category section from the
// category tree and a product listing.
package showcase

import (
	"sort"
	"strings"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/pricing"
)

// Config controls filtering, ordering, tiers and caps.
type Config struct {
	// HiddenMarker hides any category whose handle contains it.
	HiddenMarker string
	// Priority lists handles in display order. Unlisted handles follow.
	Priority   []string
	TypeTier   []string
	GenderTier []string
	// Images maps handles to card images.
	Images     map[string]string
	ListCap    int
	PreviewCap int
}

// DefaultConfig returns the storefront's category layout.
func DefaultConfig() Config {
	return Config{
		HiddenMarker: "default",
		Priority:     []string{"t-shirts", "chemises", "pantalons", "vestes", "hommes", "femmes"},
		TypeTier:     []string{"t-shirts", "chemises", "pantalons", "vestes"},
		GenderTier:   []string{"hommes", "femmes"},
		Images: map[string]string{
			"hommes":    "https://images.unsplash.com/photo-1617137968427-85924c800a22?w=600&q=80",
			"femmes":    "https://images.unsplash.com/photo-1487412720507-e7ab37603c6f?w=600&q=80",
			"t-shirts":  "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=600&q=80",
			"chemises":  "https://images.unsplash.com/photo-1596755094514-f87e34085b2c?w=600&q=80",
			"pantalons": "https://images.unsplash.com/photo-1624378439575-d8705ad7ae80?w=600&q=80",
			"vestes":    "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=600&q=80",
		},
		ListCap:    4,
		PreviewCap: 2,
	}
}

// Tile is a product previewed inside a category card.
type Tile struct {
	Product  commerce.Product
	Price    pricing.ProductPrice
	HasPrice bool
}

// Card is one category in a tier grid.
type Card struct {
	Category commerce.Category
	Image    string
	// Products holds at most ListCap matches.
	Products []commerce.Product
	// Preview holds at most PreviewCap priced tiles.
	Preview []Tile
	// Total is the number of matching products before capping.
	Total int
	// More is how many matches the preview leaves out.
	More       int
	ComingSoon bool
}

// Showcase is the composed section.
type Showcase struct {
	Region  commerce.Region
	Genders []Card
	Types   []Card
	// QuickLinks lists every visible category in display order.
	QuickLinks []commerce.Category
}

// Empty reports whether no category survived filtering.
func (s Showcase) Empty() bool { return len(s.QuickLinks) == 0 }

// Compose joins categories with products. Categories outside both tiers only
// appear in QuickLinks.
func Compose(categories []commerce.Category, products []commerce.Product, region commerce.Region, cfg Config, f money.Formatter) Showcase {
	cfg = withDefaults(cfg)
	visible := Visible(categories, cfg)
	out := Showcase{Region: region, QuickLinks: visible}
	if len(visible) == 0 {
		return out
	}

	typeTier := toSet(cfg.TypeTier)
	genderTier := toSet(cfg.GenderTier)
	for _, cat := range visible {
		handle := cat.Handle
		switch {
		case genderTier[handle]:
			out.Genders = append(out.Genders, buildCard(cat, products, cfg, fallbackImage(cfg, cfg.GenderTier), f))
		case typeTier[handle]:
			out.Types = append(out.Types, buildCard(cat, products, cfg, fallbackImage(cfg, cfg.TypeTier), f))
		}
	}
	return out
}

// Visible drops hidden categories and sorts the rest by priority. Unlisted
// categories keep their relative order after every listed one.
func Visible(categories []commerce.Category, cfg Config) []commerce.Category {
	marker := strings.ToLower(cfg.HiddenMarker)
	out := make([]commerce.Category, 0, len(categories))
	for _, cat := range categories {
		if marker != "" && strings.Contains(strings.ToLower(cat.Handle), marker) {
			continue
		}
		out = append(out, cat)
	}

	rank := make(map[string]int, len(cfg.Priority))
	for i, h := range cfg.Priority {
		if _, dup := rank[h]; !dup {
			rank[h] = i
		}
	}
	unlisted := len(cfg.Priority)
	pos := func(c commerce.Category) int {
		if r, ok := rank[c.Handle]; ok {
			return r
		}
		return unlisted
	}
	sort.SliceStable(out, func(i, j int) bool { return pos(out[i]) < pos(out[j]) })
	return out
}

func buildCard(cat commerce.Category, products []commerce.Product, cfg Config, fallback string, f money.Formatter) Card {
	card := Card{Category: cat, Image: cfg.Images[cat.Handle]}
	if card.Image == "" {
		card.Image = fallback
	}
	for _, p := range products {
		if !p.InCategory(cat.ID) {
			continue
		}
		card.Total++
		if len(card.Products) < cfg.ListCap {
			card.Products = append(card.Products, p)
		}
	}
	if card.Total == 0 {
		card.ComingSoon = true
		return card
	}

	n := min(cfg.PreviewCap, len(card.Products))
	for _, p := range card.Products[:n] {
		tile := Tile{Product: p}
		tile.Price, tile.HasPrice = pricing.Cheapest(p, f)
		card.Preview = append(card.Preview, tile)
	}
	if card.Total > len(card.Preview) {
		card.More = card.Total - len(card.Preview)
	}
	return card
}

func fallbackImage(cfg Config, tier []string) string {
	if len(tier) == 0 {
		return ""
	}
	return cfg.Images[tier[0]]
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.ListCap <= 0 {
		cfg.ListCap = def.ListCap
	}
	if cfg.PreviewCap <= 0 {
		cfg.PreviewCap = def.PreviewCap
	}
	if cfg.PreviewCap > cfg.ListCap {
		cfg.PreviewCap = cfg.ListCap
	}
	return cfg
}

func toSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[v] = true
	}
	return out
}
