package handlers

import (
	"macollections.com/storefront/internal/cartdropdown"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

// CartData is the view model of the cart page.
type CartData struct {
	Panel    cartdropdown.Panel
	CartID   string
	Subtotal string
	Shipping string
	Tax      string
	Discount string
	Total    string
	// HasDiscount hides the discount row when nothing is deducted.
	HasDiscount bool
}

// BuildCart renders the cart page. The page never opens the header dropdown.
func BuildCart(cart *commerce.Cart, f money.Formatter) CartData {
	data := CartData{Panel: cartdropdown.BuildPanel(cart, false, f)}
	if cart == nil {
		return data
	}
	code := cart.CurrencyCode
	data.CartID = cart.ID
	data.Subtotal = f.Format(cart.Subtotal, code)
	data.Shipping = f.Format(cart.ShippingTotal, code)
	data.Tax = f.Format(cart.TaxTotal, code)
	data.Discount = f.Format(cart.DiscountTotal, code)
	data.HasDiscount = cart.DiscountTotal.IsPositive()
	data.Total = f.Format(cart.Total, code)
	return data
}
