package commerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGetRegionMapsCountryCodes(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/store/regions", r.URL.Path)
		_, _ = io.WriteString(w, `{"regions":[
			{"id":"reg_tn","name":"Tunisia","currency_code":"tnd","countries":[{"iso_2":"tn"}]},
			{"id":"reg_eu","name":"Europe","currency_code":"eur","countries":[{"iso_2":"fr"},{"iso_2":"de"}]}
		]}`)
	})

	region, err := client.GetRegion(context.Background(), "TN")
	require.NoError(t, err)
	require.Equal(t, "reg_tn", region.ID)

	region, err = client.GetRegion(context.Background(), "de")
	require.NoError(t, err)
	require.Equal(t, "eur", region.CurrencyCode)

	region, err = client.GetRegion(context.Background(), " Fr ")
	require.NoError(t, err)
	require.Equal(t, "reg_eu", region.ID)

	_, err = client.GetRegion(context.Background(), "us")
	require.ErrorIs(t, err, ErrRegionNotFound)

	_, err = client.GetRegion(context.Background(), "  ")
	require.ErrorIs(t, err, ErrRegionNotFound)
}

func TestListCategoriesDefaults(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "100", q.Get("limit"))
		require.Equal(t, "*category_children, *products, *parent_category, *parent_category.parent_category", q.Get("fields"))
		_, _ = io.WriteString(w, `{"product_categories":[
			{"id":"pcat_1","name":"Hommes","handle":"hommes"},
			{"id":"pcat_2","name":"T-Shirts","handle":"t-shirts","parent_category_id":"pcat_1","parent_category":{"id":"pcat_1","handle":"hommes"}}
		]}`)
	})

	cats, err := client.ListCategories(context.Background(), CategoryQuery{})
	require.NoError(t, err)
	require.Len(t, cats, 2)
	require.True(t, cats[0].IsTopLevel())
	require.False(t, cats[1].IsTopLevel())
	require.Equal(t, "hommes", cats[1].Ancestors()[0].Handle)
}

func TestGetCategoryByHandle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("handle") {
		case "hommes/chemises":
			_, _ = io.WriteString(w, `{"product_categories":[{"id":"pcat_9","handle":"hommes/chemises"}]}`)
		default:
			_, _ = io.WriteString(w, `{"product_categories":[]}`)
		}
	})

	cat, err := client.GetCategoryByHandle(context.Background(), []string{"hommes", "chemises"})
	require.NoError(t, err)
	require.Equal(t, "pcat_9", cat.ID)

	_, err = client.GetCategoryByHandle(context.Background(), []string{"nope"})
	require.ErrorIs(t, err, ErrNotFound)
	_, err = client.GetCategoryByHandle(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListCollectionsCountsReturnedRows(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "100", q.Get("limit"))
		require.Equal(t, "0", q.Get("offset"))
		require.Equal(t, "id, handle, title", q.Get("fields"))
		_, _ = io.WriteString(w, `{"collections":[{"id":"pcol_1","title":"Été"},{"id":"pcol_2","title":"Hiver"}],"count":40}`)
	})

	cols, count, err := client.ListCollections(context.Background(), CollectionQuery{Fields: "id, handle, title"})
	require.NoError(t, err)
	require.Len(t, cols, 2)
	require.Equal(t, 2, count)
}

func TestListProductsEncodesFilters(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "reg_tn", q.Get("region_id"))
		require.Equal(t, []string{"pcat_1", "pcat_2"}, q["category_id[]"])
		require.Equal(t, "24", q.Get("offset"))
		require.Equal(t, ProductListFields, q.Get("fields"))
		_, _ = io.WriteString(w, `{"products":[{"id":"prod_1","handle":"t-shirt-classique-homme","variants":[
			{"id":"variant_1","calculated_price":{"calculated_amount":35,"original_amount":null,"currency_code":"tnd"}},
			{"id":"variant_2","calculated_price":{"calculated_amount":"29.5","original_amount":35,"currency_code":"tnd","calculated_price":{"price_list_type":"sale"}}}
		]}],"count":25}`)
	})

	products, count, err := client.ListProducts(context.Background(), ProductQuery{
		RegionID:    "reg_tn",
		CategoryIDs: []string{"pcat_1", "pcat_2"},
		Offset:      24,
	})
	require.NoError(t, err)
	require.Equal(t, 25, count)
	require.Len(t, products, 1)

	v1 := products[0].Variants[0].CalculatedPrice
	require.Nil(t, v1.OriginalAmount)
	require.True(t, v1.CalculatedAmount.Equal(decimal.NewFromInt(35)))

	v2 := products[0].Variants[1].CalculatedPrice
	require.True(t, v2.CalculatedAmount.Equal(decimal.RequireFromString("29.5")))
	require.NotNil(t, v2.OriginalAmount)
	require.Equal(t, "sale", v2.PriceListType())
}

func TestGetProductByHandleNotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"products":[],"count":0}`)
	})
	_, err := client.GetProductByHandle(context.Background(), "ghost", "reg_tn")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteCart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/store/carts/cart_ok/complete":
			_, _ = io.WriteString(w, `{"type":"order","order":{"id":"order_1","display_id":7,"currency_code":"tnd","total":42}}`)
		default:
			_, _ = io.WriteString(w, `{"type":"cart","cart":{"id":"cart_bad"},"error":{"message":"Payment authorization failed"}}`)
		}
	})

	order, err := client.CompleteCart(context.Background(), "cart_ok")
	require.NoError(t, err)
	require.Equal(t, "order_1", order.ID)
	require.Equal(t, 7, order.DisplayID)

	_, err = client.CompleteCart(context.Background(), "cart_bad")
	require.ErrorContains(t, err, "Payment authorization failed")
}

func TestInitiatePaymentSessionCreatesCollection(t *testing.T) {
	t.Parallel()

	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch r.URL.Path {
		case "/store/payment-collections":
			require.Equal(t, "cart_1", body["cart_id"])
			_, _ = io.WriteString(w, `{"payment_collection":{"id":"pay_col_1"}}`)
		case "/store/payment-collections/pay_col_1/payment-sessions":
			require.Equal(t, "pp_system_default", body["provider_id"])
			_, _ = io.WriteString(w, `{"payment_collection":{"id":"pay_col_1","payment_sessions":[{"id":"ps_1","provider_id":"pp_system_default"}]}}`)
		}
	})

	col, err := client.InitiatePaymentSession(context.Background(), &Cart{ID: "cart_1"}, "pp_system_default")
	require.NoError(t, err)
	require.Len(t, col.PaymentSessions, 1)
	require.Equal(t, []string{"/store/payment-collections", "/store/payment-collections/pay_col_1/payment-sessions"}, paths)
}

func TestCartTotalItems(t *testing.T) {
	t.Parallel()

	var nilCart *Cart
	require.Zero(t, nilCart.TotalItems())
	cart := &Cart{Items: []LineItem{{Quantity: 2}, {Quantity: 3}}}
	require.Equal(t, 5, cart.TotalItems())
}

func TestVariantInStock(t *testing.T) {
	t.Parallel()

	require.True(t, Variant{}.InStock())
	require.False(t, Variant{ManageInventory: true}.InStock())
	require.True(t, Variant{ManageInventory: true, AllowBackorder: true}.InStock())
	require.True(t, Variant{ManageInventory: true, InventoryQuantity: 3}.InStock())
}
