package checkout

import (
	"net/mail"
	"net/url"
	"strings"

	"macollections.com/storefront/internal/commerce"
)

// Form is the submitted checkout form.
type Form struct {
	Email            string
	Address          commerce.Address
	ShippingOptionID string
}

// FieldErrors maps a form field to the i18n key of its error message.
type FieldErrors map[string]string

// ParseForm reads the checkout form. The country defaults to the storefront's
// country code when the field is absent.
func ParseForm(values url.Values, countryCode string) Form {
	get := func(key string) string { return strings.TrimSpace(values.Get(key)) }
	country := strings.ToLower(get("country_code"))
	if country == "" {
		country = strings.ToLower(countryCode)
	}
	return Form{
		Email: get("email"),
		Address: commerce.Address{
			FirstName:   get("first_name"),
			LastName:    get("last_name"),
			Address1:    get("address_1"),
			Address2:    get("address_2"),
			City:        get("city"),
			PostalCode:  get("postal_code"),
			Province:    get("province"),
			CountryCode: country,
			Phone:       get("phone"),
		},
		ShippingOptionID: get("shipping_option_id"),
	}
}

// FormFromCart prefills the form from details already stored on the cart.
func FormFromCart(cart *commerce.Cart, countryCode string) Form {
	f := Form{Address: commerce.Address{CountryCode: strings.ToLower(countryCode)}}
	if cart == nil {
		return f
	}
	f.Email = cart.Email
	if cart.ShippingAddress != nil {
		f.Address = *cart.ShippingAddress
	}
	if len(cart.ShippingMethods) > 0 {
		f.ShippingOptionID = cart.ShippingMethods[0].ShippingOptionID
	}
	return f
}

// Validate returns the problems with the form, or nil when it can be submitted.
func (f Form) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.Email == "" {
		errs["email"] = "checkout.error.required"
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		errs["email"] = "checkout.error.email"
	}
	required := map[string]string{
		"first_name":  f.Address.FirstName,
		"last_name":   f.Address.LastName,
		"address_1":   f.Address.Address1,
		"city":        f.Address.City,
		"postal_code": f.Address.PostalCode,
	}
	for field, v := range required {
		if v == "" {
			errs[field] = "checkout.error.required"
		}
	}
	if len(f.Address.CountryCode) != 2 {
		errs["country_code"] = "checkout.error.country"
	}
	if f.ShippingOptionID == "" {
		errs["shipping_option_id"] = "checkout.error.shipping"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
