package handlers

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"macollections.com/storefront/internal/carousel"
	"macollections.com/storefront/internal/checkout"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/showcase"
)

var en = money.NewFormatter("en")

func priced(amount int64) *commerce.CalculatedPrice {
	return &commerce.CalculatedPrice{CalculatedAmount: decimal.NewFromInt(amount), CurrencyCode: "tnd"}
}

func tee() commerce.Product {
	opt := func(size, color string) []commerce.VariantOption {
		return []commerce.VariantOption{{OptionID: "opt_size", Value: size}, {OptionID: "opt_color", Value: color}}
	}
	return commerce.Product{
		ID:          "prod_tee",
		Title:       "T-Shirt",
		Handle:      "t-shirt",
		Description: "Coton **premium**",
		Thumbnail:   "https://cdn.example.com/tee.jpg",
		Options: []commerce.ProductOption{
			{ID: "opt_size", Title: "Taille", Values: []commerce.OptionValue{{Value: "S"}, {Value: "M"}}},
			{ID: "opt_color", Title: "Couleur", Values: []commerce.OptionValue{{Value: "Noir"}, {Value: "Blanc"}}},
		},
		Variants: []commerce.Variant{
			{ID: "v_s_noir", Options: opt("S", "Noir"), CalculatedPrice: priced(35), ManageInventory: true, InventoryQuantity: 3},
			{ID: "v_s_blanc", Options: opt("S", "Blanc"), CalculatedPrice: priced(30), ManageInventory: true},
			{ID: "v_m_noir", Options: opt("M", "Noir"), CalculatedPrice: priced(35), ManageInventory: true, InventoryQuantity: 1},
			{ID: "v_m_blanc", Options: opt("M", "Blanc"), CalculatedPrice: priced(35), ManageInventory: true, InventoryQuantity: 1},
		},
	}
}

func TestBuildProductWithoutSelectionUsesCheapest(t *testing.T) {
	t.Parallel()

	data := BuildProduct("/tn/products/t-shirt", tee(), "", en)
	require.Nil(t, data.Selected)
	require.True(t, data.HasPrice)
	require.Equal(t, "v_s_blanc", data.Price.VariantID)
	require.Equal(t, "TND 30.000", data.Price.CalculatedPrice)
	require.True(t, data.InStock)
	require.False(t, data.CanAdd)
	require.Contains(t, string(data.Description), "<strong>premium</strong>")
	require.Equal(t, []string{"https://cdn.example.com/tee.jpg"}, data.Images)
}

func TestBuildProductSelectedVariant(t *testing.T) {
	t.Parallel()

	data := BuildProduct("/tn/products/t-shirt", tee(), "v_s_noir", en)
	require.NotNil(t, data.Selected)
	require.Equal(t, "TND 35.000", data.Price.CalculatedPrice)
	require.True(t, data.CanAdd)

	require.Len(t, data.Options, 2)
	size := data.Options[0]
	require.Equal(t, "Taille", size.Title)
	require.True(t, size.Values[0].Active)
	// M keeps the selected colour.
	require.Equal(t, "/tn/products/t-shirt?v_id=v_m_noir", size.Values[1].Href)

	color := data.Options[1]
	require.Equal(t, "/tn/products/t-shirt?v_id=v_s_blanc", color.Values[1].Href)
	require.False(t, color.Values[1].Available)
}

func TestBuildProductOutOfStockSelection(t *testing.T) {
	t.Parallel()

	data := BuildProduct("/tn/products/t-shirt", tee(), "v_s_blanc", en)
	require.False(t, data.InStock)
	require.False(t, data.CanAdd)
}

func TestBuildProductSingleVariantPreselected(t *testing.T) {
	t.Parallel()

	p := commerce.Product{ID: "p", Variants: []commerce.Variant{{ID: "only", CalculatedPrice: priced(10)}}}
	data := BuildProduct("/tn/products/p", p, "unknown", en)
	require.NotNil(t, data.Selected)
	require.Equal(t, "only", data.Selected.ID)
	require.True(t, data.CanAdd)
}

func TestBuildListingSortsAcrossPages(t *testing.T) {
	t.Parallel()

	var products []commerce.Product
	for i := 1; i <= 14; i++ {
		products = append(products, commerce.Product{
			ID:        fmt.Sprintf("p%02d", i),
			CreatedAt: fmt.Sprintf("2024-01-%02dT00:00:00Z", i),
			Variants:  []commerce.Variant{{ID: fmt.Sprintf("v%02d", i), CalculatedPrice: priced(int64(100 - i))}},
		})
	}
	data := BuildListing("/tn/store", products, "price_asc", 2, en)
	require.Equal(t, 2, data.Pagination.Page)
	require.Len(t, data.Entries, 2)
	require.Equal(t, "p02", data.Entries[0].Product.ID)
	require.Equal(t, "p01", data.Entries[1].Product.ID)
	require.Equal(t, "/tn/store?sortBy=price_asc", data.PageURL(1))
	require.Equal(t, "/tn/store?page=2&sortBy=price_asc", data.PageURL(2))
	require.Len(t, data.SortOptions, 3)
	require.True(t, data.SortOptions[1].Active)
	require.Equal(t, "/tn/store", data.SortOptions[0].Href)
}

func TestListingURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/tn/store", ListingURL("/tn/store", "created_at", 1))
	require.Equal(t, "/tn/store?page=3", ListingURL("/tn/store", "", 3))
	require.Equal(t, "/tn/store?sortBy=price_desc", ListingURL("/tn/store", "price_desc", 0))
}

func TestBuildHomeDataCollectionRails(t *testing.T) {
	t.Parallel()

	collections := []commerce.Collection{{ID: "col_summer", Title: "Summer"}, {ID: "col_empty", Title: "Empty"}}
	var products []commerce.Product
	for i := 0; i < 6; i++ {
		products = append(products, commerce.Product{ID: fmt.Sprintf("p%d", i), CollectionID: "col_summer"})
	}
	products = append(products, commerce.Product{ID: "ref", Collection: &commerce.CollectionRef{ID: "col_summer"}})

	data := BuildHomeData(nil, carouselSnapshot(), showcase.Showcase{}, collections, products, en)
	require.Len(t, data.Collections, 1)
	require.Equal(t, "Summer", data.Collections[0].Collection.Title)
	require.Len(t, data.Collections[0].Entries, railCap)
}

func TestBuildCart(t *testing.T) {
	t.Parallel()

	cart := &commerce.Cart{
		ID:           "cart_1",
		CurrencyCode: "tnd",
		Items: []commerce.LineItem{
			{ID: "old", Quantity: 1, CreatedAt: "2024-01-01T00:00:00Z"},
			{ID: "new", Quantity: 2, CreatedAt: "2024-02-01T00:00:00Z"},
		},
		Subtotal: decimal.NewFromInt(105),
		Total:    decimal.NewFromInt(112),
	}
	data := BuildCart(cart, en)
	require.False(t, data.Panel.Open)
	require.Equal(t, 3, data.Panel.TotalItems)
	require.Equal(t, "new", data.Panel.Items[0].ID)
	require.Equal(t, "TND 112.000", data.Total)
	require.False(t, data.HasDiscount)

	empty := BuildCart(nil, en)
	require.True(t, empty.Panel.Empty)
	require.Empty(t, empty.Total)
}

func TestBuildCheckoutSelectsOption(t *testing.T) {
	t.Parallel()

	cart := &commerce.Cart{ID: "c", CurrencyCode: "tnd"}
	options := []commerce.ShippingOption{{ID: "so_std", Name: "Standard", Amount: decimal.NewFromInt(7)}}

	data := BuildCheckout(cart, options, checkout.Form{}, nil, en)
	require.True(t, data.ShippingOptions[0].Selected)
	require.Equal(t, "TND 7.000", data.ShippingOptions[0].Price)

	options = append(options, commerce.ShippingOption{ID: "so_exp", Name: "Express"})
	data = BuildCheckout(cart, options, checkout.Form{ShippingOptionID: "so_exp"}, checkout.FieldErrors{"email": "checkout.error.required"}, en)
	require.False(t, data.ShippingOptions[0].Selected)
	require.True(t, data.ShippingOptions[1].Selected)
	require.Equal(t, "checkout.error.required", data.Errors["email"])
}

func TestBuildOrder(t *testing.T) {
	t.Parallel()

	order := commerce.Order{
		ID:           "order_1",
		DisplayID:    42,
		CurrencyCode: "usd",
		CreatedAt:    "2024-03-09T10:00:00Z",
		Items:        []commerce.LineItem{{Title: "Line", ProductTitle: "Jacket", Quantity: 1, Total: decimal.NewFromInt(89)}},
		Total:        decimal.NewFromInt(96),
	}
	data := BuildOrder(order, en)
	require.Equal(t, "Mar 9, 2024", data.PlacedOn)
	require.Equal(t, "$96.00", data.Total)
	require.Equal(t, "Jacket", data.Items[0].Title)
	require.Equal(t, "$89.00", data.Items[0].Total)
}

func carouselSnapshot() carousel.Snapshot {
	return carousel.Snapshot{Count: 0}
}
