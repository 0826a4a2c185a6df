package carousel

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Link is a call-to-action. Href is relative to the country prefix.
type Link struct {
	Text string `yaml:"text"`
	Href string `yaml:"href"`
}

// Slide is one hero slide.
type Slide struct {
	Image        string `yaml:"image"`
	Title        string `yaml:"title"`
	Subtitle     string `yaml:"subtitle"`
	CTA          Link   `yaml:"cta"`
	CTASecondary Link   `yaml:"cta_secondary"`
}

type slideFile struct {
	Slides []Slide `yaml:"slides"`
}

// DefaultSlides is the built-in hero content.
func DefaultSlides() []Slide {
	return []Slide{
		{
			Image:        "https://images.unsplash.com/photo-1441986300917-64674bd600d8?w=1920&q=80",
			Title:        "Elevate Your Style",
			Subtitle:     "Discover timeless elegance with M&A Collections",
			CTA:          Link{Text: "Shop Collection", Href: "/store"},
			CTASecondary: Link{Text: "Explore Men", Href: "/categories/hommes"},
		},
		{
			Image:        "https://images.unsplash.com/photo-1490481651871-ab68de25d43d?w=1920&q=80",
			Title:        "New Season Arrivals",
			Subtitle:     "Premium clothing crafted for the modern individual",
			CTA:          Link{Text: "Shop Women", Href: "/categories/femmes"},
			CTASecondary: Link{Text: "View All", Href: "/store"},
		},
		{
			Image:        "https://images.unsplash.com/photo-1558618666-fcd25c85cd64?w=1920&q=80",
			Title:        "Premium Quality",
			Subtitle:     "Handcrafted with passion, designed for you",
			CTA:          Link{Text: "Discover T-Shirts", Href: "/categories/t-shirts"},
			CTASecondary: Link{Text: "Browse Shirts", Href: "/categories/chemises"},
		},
	}
}

// LoadSlides reads slides from a YAML file. A missing file or an empty slide
// list yields DefaultSlides. Slides without an image or title are skipped.
func LoadSlides(path string) ([]Slide, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultSlides(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSlides(), nil
		}
		return nil, fmt.Errorf("carousel: read slides: %w", err)
	}
	return ParseSlides(raw)
}

// ParseSlides decodes the YAML slide document.
func ParseSlides(raw []byte) ([]Slide, error) {
	var doc slideFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("carousel: parse slides: %w", err)
	}
	slides := make([]Slide, 0, len(doc.Slides))
	for _, s := range doc.Slides {
		s.Image = strings.TrimSpace(s.Image)
		s.Title = strings.TrimSpace(s.Title)
		if s.Image == "" || s.Title == "" {
			continue
		}
		slides = append(slides, s)
	}
	if len(slides) == 0 {
		return DefaultSlides(), nil
	}
	return slides, nil
}
