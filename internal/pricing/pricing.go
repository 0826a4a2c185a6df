// Package pricing picks the price a product is displayed at.
package pricing

import (
	"github.com/shopspring/decimal"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

// Price types.
const (
	TypeDefault = "default"
	TypeSale    = "sale"
)

var hundred = decimal.NewFromInt(100)

// ProductPrice is the display price of a product or variant.
type ProductPrice struct {
	VariantID        string
	CalculatedPrice  string
	CalculatedAmount decimal.Decimal
	OriginalPrice    string
	OriginalAmount   decimal.Decimal
	HasOriginal      bool
	CurrencyCode     string
	PriceType        string
	PercentageDiff   int
}

// OnSale reports whether the price is discounted.
func (p ProductPrice) OnSale() bool { return p.PriceType == TypeSale }

// Cheapest returns the lowest calculated price across the product's variants.
// Variants without a calculated price are skipped; when none is priced the
// second result is false. Ties keep the first variant encountered.
func Cheapest(p commerce.Product, f money.Formatter) (ProductPrice, bool) {
	var best *commerce.Variant
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.CalculatedPrice == nil {
			continue
		}
		if best == nil || v.CalculatedPrice.CalculatedAmount.LessThan(best.CalculatedPrice.CalculatedAmount) {
			best = v
		}
	}
	if best == nil {
		return ProductPrice{}, false
	}
	return resolve(*best, f), true
}

// ForVariant returns the price of the selected variant.
func ForVariant(p commerce.Product, variantID string, f money.Formatter) (ProductPrice, bool) {
	v, ok := p.Variant(variantID)
	if !ok || v.CalculatedPrice == nil {
		return ProductPrice{}, false
	}
	return resolve(v, f), true
}

func resolve(v commerce.Variant, f money.Formatter) ProductPrice {
	cp := v.CalculatedPrice
	out := ProductPrice{
		VariantID:        v.ID,
		CalculatedAmount: cp.CalculatedAmount,
		CalculatedPrice:  f.Format(cp.CalculatedAmount, cp.CurrencyCode),
		CurrencyCode:     cp.CurrencyCode,
		PriceType:        TypeDefault,
	}
	if cp.OriginalAmount != nil {
		orig := *cp.OriginalAmount
		out.HasOriginal = true
		out.OriginalAmount = orig
		out.OriginalPrice = f.Format(orig, cp.CurrencyCode)
		if orig.IsPositive() && orig.GreaterThan(cp.CalculatedAmount) {
			out.PriceType = TypeSale
			out.PercentageDiff = int(orig.Sub(cp.CalculatedAmount).Div(orig).Mul(hundred).Round(0).IntPart())
		}
	}
	return out
}
