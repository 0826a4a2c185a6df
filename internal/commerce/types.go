package commerce

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product mirrors the store API product payload.
type Product struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Handle       string          `json:"handle"`
	Subtitle     string          `json:"subtitle"`
	Description  string          `json:"description"`
	Thumbnail    string          `json:"thumbnail"`
	Images       []Image         `json:"images"`
	Variants     []Variant       `json:"variants"`
	Options      []ProductOption `json:"options"`
	Categories   []CategoryRef   `json:"categories"`
	CollectionID string          `json:"collection_id"`
	Collection   *CollectionRef  `json:"collection"`
	Tags         []Tag           `json:"tags"`
	Material     string          `json:"material"`
	Weight       decimal.Decimal `json:"weight"`
	Metadata     map[string]any  `json:"metadata"`
	CreatedAt    string          `json:"created_at"`
}

// InCategory reports whether the product references any of the category ids.
func (p Product) InCategory(ids ...string) bool {
	for _, ref := range p.Categories {
		for _, id := range ids {
			if ref.ID == id {
				return true
			}
		}
	}
	return false
}

// Variant finds a variant by id.
func (p Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// ImageURLs returns the thumbnail followed by the gallery, without duplicates.
func (p Product) ImageURLs() []string {
	seen := make(map[string]struct{}, len(p.Images)+1)
	out := make([]string, 0, len(p.Images)+1)
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	add(p.Thumbnail)
	for _, img := range p.Images {
		add(img.URL)
	}
	return out
}

// Image is a product gallery entry.
type Image struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Tag is a product tag.
type Tag struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ProductOption is an option axis such as size or color.
type ProductOption struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Values []OptionValue `json:"values"`
}

// OptionValue is one value of an option axis.
type OptionValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// VariantOption is the value a variant selects for an option.
type VariantOption struct {
	ID       string `json:"id"`
	Value    string `json:"value"`
	OptionID string `json:"option_id"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku"`
	Options           []VariantOption  `json:"options"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price"`
	InventoryQuantity int              `json:"inventory_quantity"`
	ManageInventory   bool             `json:"manage_inventory"`
	AllowBackorder    bool             `json:"allow_backorder"`
}

// InStock reports whether the variant can be added to a cart.
func (v Variant) InStock() bool {
	if !v.ManageInventory || v.AllowBackorder {
		return true
	}
	return v.InventoryQuantity > 0
}

// OptionValue returns the value selected for optionID.
func (v Variant) OptionValue(optionID string) string {
	for _, o := range v.Options {
		if o.OptionID == optionID {
			return o.Value
		}
	}
	return ""
}

// CalculatedPrice is a variant price resolved for a region. Amounts are in
// major currency units.
type CalculatedPrice struct {
	ID               string           `json:"id"`
	CalculatedAmount decimal.Decimal  `json:"calculated_amount"`
	OriginalAmount   *decimal.Decimal `json:"original_amount"`
	CurrencyCode     string           `json:"currency_code"`
	Detail           *PriceDetail     `json:"calculated_price"`
}

// PriceDetail carries the price list the calculated amount came from.
type PriceDetail struct {
	PriceListID   string `json:"price_list_id"`
	PriceListType string `json:"price_list_type"`
}

// PriceListType returns the price list type, or "" for base prices.
func (c CalculatedPrice) PriceListType() string {
	if c.Detail == nil {
		return ""
	}
	return c.Detail.PriceListType
}

// CategoryRef is the category reference embedded in a product.
type CategoryRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

// ProductRef is the product reference embedded in categories and collections.
type ProductRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Category is a product category with its tree links.
type Category struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Handle           string       `json:"handle"`
	Description      string       `json:"description"`
	Rank             int          `json:"rank"`
	ParentCategoryID string       `json:"parent_category_id"`
	ParentCategory   *Category    `json:"parent_category"`
	Children         []Category   `json:"category_children"`
	Products         []ProductRef `json:"products"`
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.ParentCategoryID == "" && c.ParentCategory == nil
}

// DescendantIDs returns the category id followed by every nested child id.
func (c Category) DescendantIDs() []string {
	ids := []string{c.ID}
	for _, child := range c.Children {
		ids = append(ids, child.DescendantIDs()...)
	}
	return ids
}

// Ancestors returns parents from the root down to the direct parent.
func (c Category) Ancestors() []Category {
	var chain []Category
	for p := c.ParentCategory; p != nil; p = p.ParentCategory {
		chain = append([]Category{*p}, chain...)
	}
	return chain
}

// CollectionRef is the collection reference embedded in a product.
type CollectionRef struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Collection groups products for merchandising.
type Collection struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Handle   string       `json:"handle"`
	Products []ProductRef `json:"products"`
}

// Country is a member of a region.
type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
}

// Region groups countries that share a currency.
type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries"`
}

// HasCountry reports whether code (ISO 3166 alpha-2, any case) belongs to the region.
func (r Region) HasCountry(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range r.Countries {
		if strings.ToLower(c.ISO2) == code {
			return true
		}
	}
	return false
}

// Address is a shipping or billing address.
type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// LineItem is a cart or order line.
type LineItem struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	ProductID     string          `json:"product_id"`
	ProductTitle  string          `json:"product_title"`
	ProductHandle string          `json:"product_handle"`
	VariantID     string          `json:"variant_id"`
	VariantTitle  string          `json:"variant_title"`
	Thumbnail     string          `json:"thumbnail"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"created_at"`
}

// ShippingMethod is a shipping option applied to a cart.
type ShippingMethod struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	ShippingOptionID string          `json:"shipping_option_id"`
	Amount           decimal.Decimal `json:"amount"`
}

// PaymentSession is a provider session inside a payment collection.
type PaymentSession struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Status     string `json:"status"`
}

// PaymentCollection holds the payment sessions of a cart.
type PaymentCollection struct {
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	PaymentSessions []PaymentSession `json:"payment_sessions"`
}

// Cart is a server-side shopping cart snapshot.
type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id"`
	CurrencyCode      string             `json:"currency_code"`
	Email             string             `json:"email"`
	Items             []LineItem         `json:"items"`
	ShippingAddress   *Address           `json:"shipping_address"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	ItemTotal         decimal.Decimal    `json:"item_total"`
	ShippingTotal     decimal.Decimal    `json:"shipping_total"`
	TaxTotal          decimal.Decimal    `json:"tax_total"`
	DiscountTotal     decimal.Decimal    `json:"discount_total"`
	Total             decimal.Decimal    `json:"total"`
	ShippingMethods   []ShippingMethod   `json:"shipping_methods"`
	PaymentCollection *PaymentCollection `json:"payment_collection"`
}

// TotalItems sums line item quantities. A nil cart holds zero items.
func (c *Cart) TotalItems() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// ShippingOption is a delivery choice offered for a cart.
type ShippingOption struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	PriceType string          `json:"price_type"`
}

// Order is the result of completing a cart.
type Order struct {
	ID            string          `json:"id"`
	DisplayID     int             `json:"display_id"`
	Email         string          `json:"email"`
	CurrencyCode  string          `json:"currency_code"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"created_at"`
}
