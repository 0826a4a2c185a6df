package handlers

import (
	"macollections.com/storefront/internal/carousel"
	"macollections.com/storefront/internal/catalog"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/showcase"
)

// HomeData is the view model for the home page.
type HomeData struct {
	Slides   []carousel.Slide
	Carousel carousel.Snapshot
	Showcase showcase.Showcase
	// Collections lists the featured rails; collections without products are skipped.
	Collections []CollectionRail
}

// CollectionRail is one featured collection with its products.
type CollectionRail struct {
	Collection commerce.Collection
	Entries    []catalog.Entry
}

// railCap is the number of products shown per featured collection.
const railCap = 4

// BuildHomeData assembles the home page: hero carousel, category showcase and
// one rail per collection, products matched by collection id.
func BuildHomeData(slides []carousel.Slide, snap carousel.Snapshot, sc showcase.Showcase,
	collections []commerce.Collection, products []commerce.Product, f money.Formatter) HomeData {
	data := HomeData{Slides: slides, Carousel: snap, Showcase: sc}
	for _, col := range collections {
		var matched []commerce.Product
		for _, p := range products {
			if p.CollectionID == col.ID || (p.Collection != nil && p.Collection.ID == col.ID) {
				matched = append(matched, p)
				if len(matched) == railCap {
					break
				}
			}
		}
		if len(matched) == 0 {
			continue
		}
		data.Collections = append(data.Collections, CollectionRail{
			Collection: col,
			Entries:    catalog.Resolve(matched, f),
		})
	}
	return data
}
