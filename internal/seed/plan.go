// Package seed provisions a commerce backend with demo store data.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"macollections.com/storefront/internal/commerce"
)

// ErrInvalidPlan is wrapped by every plan validation failure.
var ErrInvalidPlan = errors.New("invalid seed plan")

//go:embed demo.yaml
var demoPlan []byte

// Plan describes the store to create.
type Plan struct {
	StoreName       string               `yaml:"store_name"`
	SalesChannel    string               `yaml:"sales_channel"`
	Currencies      []CurrencyPlan       `yaml:"currencies"`
	Regions         []RegionPlan         `yaml:"regions"`
	TaxProvider     string               `yaml:"tax_provider"`
	StockLocation   LocationPlan         `yaml:"stock_location"`
	ShippingProfile string               `yaml:"shipping_profile"`
	Fulfillment     FulfillmentPlan      `yaml:"fulfillment"`
	ShippingOptions []ShippingOptionPlan `yaml:"shipping_options"`
	PublishableKey  string               `yaml:"publishable_key"`
	Categories      []CategoryPlan       `yaml:"categories"`
	Products        []ProductPlan        `yaml:"products"`
	StockedQuantity int                  `yaml:"stocked_quantity"`
}

// CurrencyPlan is a supported store currency.
type CurrencyPlan struct {
	Code    string `yaml:"code"`
	Default bool   `yaml:"default"`
}

// RegionPlan creates a region.
type RegionPlan struct {
	Name             string   `yaml:"name"`
	Currency         string   `yaml:"currency"`
	Countries        []string `yaml:"countries"`
	PaymentProviders []string `yaml:"payment_providers"`
}

// LocationPlan creates the warehouse stock location.
type LocationPlan struct {
	Name                string `yaml:"name"`
	City                string `yaml:"city"`
	CountryCode         string `yaml:"country_code"`
	Address             string `yaml:"address"`
	FulfillmentProvider string `yaml:"fulfillment_provider"`
}

// FulfillmentPlan creates the shipping fulfillment set and its service zone.
type FulfillmentPlan struct {
	Name        string   `yaml:"name"`
	ServiceZone string   `yaml:"service_zone"`
	Countries   []string `yaml:"countries"`
}

// ShippingOptionPlan creates a flat rate shipping option.
type ShippingOptionPlan struct {
	Name        string          `yaml:"name"`
	Amount      decimal.Decimal `yaml:"amount"`
	Currency    string          `yaml:"currency"`
	Label       string          `yaml:"label"`
	Description string          `yaml:"description"`
	Code        string          `yaml:"code"`
}

// CategoryPlan creates a product category.
type CategoryPlan struct {
	Name   string `yaml:"name"`
	Handle string `yaml:"handle"`
}

// OptionPlan is a product option axis.
type OptionPlan struct {
	Title  string   `yaml:"title"`
	Values []string `yaml:"values"`
}

// PricePlan is a variant price.
type PricePlan struct {
	Amount   decimal.Decimal `yaml:"amount"`
	Currency string          `yaml:"currency"`
}

// VariantPlan is an explicitly listed variant.
type VariantPlan struct {
	Title   string            `yaml:"title"`
	SKU     string            `yaml:"sku"`
	Options map[string]string `yaml:"options"`
	Prices  []PricePlan       `yaml:"prices"`
}

// ProductPlan creates a product. When Variants is empty the variants are the
// full option matrix, priced at Price in Currency with SKUs built from SKUPrefix.
type ProductPlan struct {
	Title       string        `yaml:"title"`
	Handle      string        `yaml:"handle"`
	Description string        `yaml:"description"`
	Weight      int           `yaml:"weight"`
	Categories  []string      `yaml:"categories"`
	Images      []string      `yaml:"images"`
	Options     []OptionPlan  `yaml:"options"`
	SKUPrefix   string        `yaml:"sku_prefix"`
	Price       PricePlan     `yaml:"price"`
	Variants    []VariantPlan `yaml:"variants"`
}

// DemoPlan returns the built-in M&A Collections plan.
func DemoPlan() (Plan, error) {
	return ParsePlan(demoPlan)
}

// LoadPlan reads and validates a plan file. An empty path selects the demo plan.
func LoadPlan(path string) (Plan, error) {
	if strings.TrimSpace(path) == "" {
		return DemoPlan()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("seed: read plan: %w", err)
	}
	return ParsePlan(raw)
}

// ParsePlan decodes and validates a YAML plan.
func ParsePlan(raw []byte) (Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(raw, &plan); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// Validate reports every structural problem of the plan at once.
func (p Plan) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(p.SalesChannel) == "" {
		add("sales_channel is required")
	}
	defaults := 0
	for _, c := range p.Currencies {
		if len(c.Code) != 3 {
			add("currency %q must be a 3-letter code", c.Code)
		}
		if c.Default {
			defaults++
		}
	}
	if defaults != 1 {
		add("exactly one default currency is required, got %d", defaults)
	}
	for i, r := range p.Regions {
		if r.Name == "" || r.Currency == "" || len(r.Countries) == 0 {
			add("regions[%d] needs name, currency and countries", i)
		}
	}
	if p.StockLocation.Name == "" {
		add("stock_location.name is required")
	}
	if p.Fulfillment.Name == "" || p.Fulfillment.ServiceZone == "" {
		add("fulfillment needs name and service_zone")
	}
	for i, o := range p.ShippingOptions {
		if o.Name == "" || o.Currency == "" {
			add("shipping_options[%d] needs name and currency", i)
		}
		if o.Amount.IsNegative() {
			add("shipping_options[%d] amount is negative", i)
		}
	}
	if p.StockedQuantity < 0 {
		add("stocked_quantity is negative")
	}

	categories := make(map[string]bool, len(p.Categories))
	for i, c := range p.Categories {
		if c.Name == "" {
			add("categories[%d] needs a name", i)
			continue
		}
		if categories[c.Name] {
			add("category %q is declared twice", c.Name)
		}
		categories[c.Name] = true
	}

	handles := make(map[string]bool, len(p.Products))
	for _, prod := range p.Products {
		label := prod.Handle
		if label == "" {
			label = prod.Title
		}
		if prod.Title == "" || prod.Handle == "" {
			add("product %q needs title and handle", label)
		}
		if handles[prod.Handle] {
			add("product handle %q is used twice", prod.Handle)
		}
		handles[prod.Handle] = true
		for _, name := range prod.Categories {
			if !categories[name] {
				add("product %q references unknown category %q", label, name)
			}
		}
		if len(prod.Options) == 0 {
			add("product %q has no options", label)
		}
		titles := make(map[string]bool, len(prod.Options))
		for _, o := range prod.Options {
			if o.Title == "" || len(o.Values) == 0 {
				add("product %q has an option without title or values", label)
			}
			titles[o.Title] = true
		}
		if len(prod.Variants) == 0 {
			if prod.SKUPrefix == "" || prod.Price.Currency == "" || !prod.Price.Amount.IsPositive() {
				add("product %q needs variants or sku_prefix with a positive price", label)
			}
			continue
		}
		for _, v := range prod.Variants {
			if len(v.Prices) == 0 {
				add("product %q variant %q has no prices", label, v.Title)
			}
			for key := range v.Options {
				if !titles[key] {
					add("product %q variant %q uses unknown option %q", label, v.Title, key)
				}
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPlan, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultCurrency returns the default store currency code.
func (p Plan) DefaultCurrency() string {
	for _, c := range p.Currencies {
		if c.Default {
			return c.Code
		}
	}
	return ""
}

// VariantInputs expands the product's variants. Matrix variants are titled
// "S / Noir" and get SKUs like MA-TSH-S-NOIR, where each option value
// contributes its first word in upper case.
func (prod ProductPlan) VariantInputs() []commerce.VariantInput {
	if len(prod.Variants) > 0 {
		out := make([]commerce.VariantInput, 0, len(prod.Variants))
		for _, v := range prod.Variants {
			in := commerce.VariantInput{Title: v.Title, SKU: v.SKU, Options: v.Options}
			for _, price := range v.Prices {
				in.Prices = append(in.Prices, commerce.VariantPrice{Amount: price.Amount, CurrencyCode: price.Currency})
			}
			out = append(out, in)
		}
		return out
	}

	combos := [][]string{{}}
	for _, opt := range prod.Options {
		next := make([][]string, 0, len(combos)*len(opt.Values))
		for _, combo := range combos {
			for _, value := range opt.Values {
				c := append(append([]string(nil), combo...), value)
				next = append(next, c)
			}
		}
		combos = next
	}

	out := make([]commerce.VariantInput, 0, len(combos))
	for _, combo := range combos {
		options := make(map[string]string, len(combo))
		sku := []string{prod.SKUPrefix}
		for i, value := range combo {
			options[prod.Options[i].Title] = value
			sku = append(sku, skuCode(value))
		}
		out = append(out, commerce.VariantInput{
			Title:   strings.Join(combo, " / "),
			SKU:     strings.Join(sku, "-"),
			Options: options,
			Prices:  []commerce.VariantPrice{{Amount: prod.Price.Amount, CurrencyCode: prod.Price.Currency}},
		})
	}
	return out
}

func skuCode(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
