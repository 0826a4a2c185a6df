package handlers

import (
	"html/template"
	"net/url"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/content"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/pricing"
)

// ProductData is the view model of the product page.
type ProductData struct {
	Product     commerce.Product
	Description template.HTML
	Images      []string
	Price       pricing.ProductPrice
	HasPrice    bool
	// Selected is nil until a variant is chosen; single-variant products preselect it.
	Selected *commerce.Variant
	Options  []OptionView
	InStock  bool
	CanAdd   bool
}

// OptionView is one option axis with its selectable values.
type OptionView struct {
	ID     string
	Title  string
	Values []OptionChoice
}

// OptionChoice links to the variant carrying the value.
type OptionChoice struct {
	Value     string
	Href      string
	Active    bool
	Available bool
}

// BuildProduct selects the variant from ?v_id= and prices the page with it,
// falling back to the cheapest variant.
func BuildProduct(basePath string, p commerce.Product, variantID string, f money.Formatter) ProductData {
	data := ProductData{
		Product:     p,
		Description: content.RenderDescription(p.Description),
		Images:      p.ImageURLs(),
	}
	if v, ok := p.Variant(variantID); ok {
		data.Selected = &v
	} else if len(p.Variants) == 1 {
		v := p.Variants[0]
		data.Selected = &v
	}

	if data.Selected != nil {
		data.Price, data.HasPrice = pricing.ForVariant(p, data.Selected.ID, f)
		data.InStock = data.Selected.InStock()
		data.CanAdd = data.InStock
	} else {
		data.Price, data.HasPrice = pricing.Cheapest(p, f)
		for _, v := range p.Variants {
			if v.InStock() {
				data.InStock = true
				break
			}
		}
	}

	for _, opt := range p.Options {
		view := OptionView{ID: opt.ID, Title: opt.Title}
		for _, val := range opt.Values {
			target, ok := variantFor(p, data.Selected, opt.ID, val.Value)
			choice := OptionChoice{Value: val.Value}
			if data.Selected != nil {
				choice.Active = data.Selected.OptionValue(opt.ID) == val.Value
			}
			if ok {
				choice.Href = basePath + "?v_id=" + url.QueryEscape(target.ID)
				choice.Available = target.InStock()
			}
			view.Values = append(view.Values, choice)
		}
		data.Options = append(data.Options, view)
	}
	return data
}

// variantFor finds the variant that keeps the current selection on every other
// axis and takes value on optionID. Without an exact match the first variant
// carrying the value is used.
func variantFor(p commerce.Product, current *commerce.Variant, optionID, value string) (commerce.Variant, bool) {
	var fallback *commerce.Variant
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.OptionValue(optionID) != value {
			continue
		}
		if fallback == nil {
			fallback = v
		}
		if current == nil {
			break
		}
		match := true
		for _, o := range current.Options {
			if o.OptionID != optionID && v.OptionValue(o.OptionID) != o.Value {
				match = false
				break
			}
		}
		if match {
			return *v, true
		}
	}
	if fallback == nil {
		return commerce.Variant{}, false
	}
	return *fallback, true
}
