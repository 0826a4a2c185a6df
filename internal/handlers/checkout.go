package handlers

import (
	"macollections.com/storefront/internal/cartdropdown"
	"macollections.com/storefront/internal/checkout"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
)

// CheckoutData is the view model of the checkout page.
type CheckoutData struct {
	Cart            CartData
	Form            checkout.Form
	Errors          checkout.FieldErrors
	ShippingOptions []ShippingChoice
	// FailureKey is the i18n key of a non-field failure, if any.
	FailureKey string
}

// ShippingChoice is a rendered shipping option.
type ShippingChoice struct {
	ID       string
	Name     string
	Price    string
	Selected bool
}

// BuildCheckout renders the checkout form for the cart.
func BuildCheckout(cart *commerce.Cart, options []commerce.ShippingOption, form checkout.Form, errs checkout.FieldErrors, f money.Formatter) CheckoutData {
	data := CheckoutData{Cart: BuildCart(cart, f), Form: form, Errors: errs}
	code := ""
	if cart != nil {
		code = cart.CurrencyCode
	}
	for _, o := range options {
		data.ShippingOptions = append(data.ShippingOptions, ShippingChoice{
			ID:       o.ID,
			Name:     o.Name,
			Price:    f.Format(o.Amount, code),
			Selected: o.ID == form.ShippingOptionID,
		})
	}
	if form.ShippingOptionID == "" && len(data.ShippingOptions) == 1 {
		data.ShippingOptions[0].Selected = true
	}
	return data
}

// OrderData is the view model of the order confirmation page.
type OrderData struct {
	Order    commerce.Order
	Items    []OrderLine
	Subtotal string
	Shipping string
	Total    string
	PlacedOn string
}

// OrderLine is a rendered order line.
type OrderLine struct {
	Title        string
	VariantTitle string
	Quantity     int
	Total        string
}

// BuildOrder renders a placed order.
func BuildOrder(o commerce.Order, f money.Formatter) OrderData {
	data := OrderData{
		Order:    o,
		Subtotal: f.Format(o.Subtotal, o.CurrencyCode),
		Shipping: f.Format(o.ShippingTotal, o.CurrencyCode),
		Total:    f.Format(o.Total, o.CurrencyCode),
		PlacedOn: o.CreatedAt,
	}
	if t, ok := parseTimestamp(o.CreatedAt); ok {
		data.PlacedOn = f.Date(t)
	}
	for _, li := range cartdropdown.SortItems(o.Items) {
		title := li.ProductTitle
		if title == "" {
			title = li.Title
		}
		data.Items = append(data.Items, OrderLine{
			Title:        title,
			VariantTitle: li.VariantTitle,
			Quantity:     li.Quantity,
			Total:        f.Format(li.Total, o.CurrencyCode),
		})
	}
	return data
}
