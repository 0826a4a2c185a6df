package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultListLimit = 100

	categoryFields       = "*category_children, *products, *parent_category, *parent_category.parent_category"
	categoryHandleFields = "*category_children, *products"
	collectionFields     = "*products"
	// ProductListFields selects what listing pages need: calculated prices,
	// stock and category refs.
	ProductListFields = "*variants.calculated_price,+variants.inventory_quantity,*variants.images,+metadata,+tags,*categories"
	productPageFields = "*variants.calculated_price,+variants.inventory_quantity,*variants.options,*options,*options.values,*images,+metadata,+tags,*categories,*collection"
)

// CategoryQuery filters the category listing.
type CategoryQuery struct {
	Handle string
	Limit  int
	Fields string
}

// ListCategories returns categories with their children, products and parents.
func (c *Client) ListCategories(ctx context.Context, q CategoryQuery) ([]Category, error) {
	query := url.Values{}
	query.Set("fields", firstNonEmpty(q.Fields, categoryFields))
	query.Set("limit", strconv.Itoa(positiveOr(q.Limit, defaultListLimit)))
	if q.Handle != "" {
		query.Set("handle", q.Handle)
	}

	var payload struct {
		ProductCategories []Category `json:"product_categories"`
	}
	err := c.Do(ctx, Request{
		Name:  "list_categories",
		Path:  "/store/product-categories",
		Query: query,
		Tags:  []string{TagCategories},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.ProductCategories, nil
}

// GetCategoryByHandle resolves a nested category path ("hommes/t-shirts").
func (c *Client) GetCategoryByHandle(ctx context.Context, segments []string) (Category, error) {
	handle := strings.Join(segments, "/")
	if handle == "" {
		return Category{}, ErrNotFound
	}
	cats, err := c.ListCategories(ctx, CategoryQuery{Handle: handle, Fields: categoryHandleFields})
	if err != nil {
		return Category{}, err
	}
	if len(cats) == 0 {
		return Category{}, ErrNotFound
	}
	return cats[0], nil
}

// CollectionQuery filters the collection listing.
type CollectionQuery struct {
	Handle string
	Limit  int
	Offset int
	Fields string
}

// ListCollections returns collections and how many were returned.
func (c *Client) ListCollections(ctx context.Context, q CollectionQuery) ([]Collection, int, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(positiveOr(q.Limit, defaultListLimit)))
	query.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	if q.Handle != "" {
		query.Set("handle", q.Handle)
	}
	if q.Fields != "" {
		query.Set("fields", q.Fields)
	}

	var payload struct {
		Collections []Collection `json:"collections"`
	}
	err := c.Do(ctx, Request{
		Name:  "list_collections",
		Path:  "/store/collections",
		Query: query,
		Tags:  []string{TagCollections},
	}, &payload)
	if err != nil {
		return nil, 0, err
	}
	return payload.Collections, len(payload.Collections), nil
}

// RetrieveCollection fetches one collection by id.
func (c *Client) RetrieveCollection(ctx context.Context, id string) (Collection, error) {
	if strings.TrimSpace(id) == "" {
		return Collection{}, ErrNotFound
	}
	var payload struct {
		Collection Collection `json:"collection"`
	}
	err := c.Do(ctx, Request{
		Name: "retrieve_collection",
		Path: "/store/collections/" + url.PathEscape(id),
		Tags: []string{TagCollections},
	}, &payload)
	if err != nil {
		return Collection{}, err
	}
	return payload.Collection, nil
}

// GetCollectionByHandle resolves a collection with its product refs.
func (c *Client) GetCollectionByHandle(ctx context.Context, handle string) (Collection, error) {
	if strings.TrimSpace(handle) == "" {
		return Collection{}, ErrNotFound
	}
	cols, _, err := c.ListCollections(ctx, CollectionQuery{Handle: handle, Fields: collectionFields})
	if err != nil {
		return Collection{}, err
	}
	if len(cols) == 0 {
		return Collection{}, ErrNotFound
	}
	return cols[0], nil
}

// ProductQuery filters the product listing. Prices are calculated for RegionID.
type ProductQuery struct {
	RegionID      string
	Limit         int
	Offset        int
	Handle        string
	CategoryIDs   []string
	CollectionIDs []string
	IDs           []string
	Fields        string
	Order         string
}

// ListProducts returns one page of products and the total match count.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, int, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(positiveOr(q.Limit, 12)))
	query.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	query.Set("fields", firstNonEmpty(q.Fields, ProductListFields))
	if q.RegionID != "" {
		query.Set("region_id", q.RegionID)
	}
	if q.Handle != "" {
		query.Set("handle", q.Handle)
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	for _, id := range q.CategoryIDs {
		query.Add("category_id[]", id)
	}
	for _, id := range q.CollectionIDs {
		query.Add("collection_id[]", id)
	}
	for _, id := range q.IDs {
		query.Add("id[]", id)
	}

	var payload struct {
		Products []Product `json:"products"`
		Count    int       `json:"count"`
	}
	err := c.Do(ctx, Request{
		Name:  "list_products",
		Path:  "/store/products",
		Query: query,
		Tags:  []string{TagProducts},
	}, &payload)
	if err != nil {
		return nil, 0, err
	}
	count := payload.Count
	if count < len(payload.Products) {
		count = len(payload.Products)
	}
	return payload.Products, count, nil
}

// GetProductByHandle fetches a product with everything the product page shows.
func (c *Client) GetProductByHandle(ctx context.Context, handle, regionID string) (Product, error) {
	if strings.TrimSpace(handle) == "" {
		return Product{}, ErrNotFound
	}
	products, _, err := c.ListProducts(ctx, ProductQuery{
		RegionID: regionID,
		Handle:   handle,
		Limit:    1,
		Fields:   productPageFields,
	})
	if err != nil {
		return Product{}, err
	}
	if len(products) == 0 {
		return Product{}, ErrNotFound
	}
	return products[0], nil
}

// ListRegions returns every region the store serves.
func (c *Client) ListRegions(ctx context.Context) ([]Region, error) {
	var payload struct {
		Regions []Region `json:"regions"`
	}
	err := c.Do(ctx, Request{
		Name: "list_regions",
		Path: "/store/regions",
		Tags: []string{TagRegions},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.Regions, nil
}

// GetRegion maps a country code to the region that serves it.
func (c *Client) GetRegion(ctx context.Context, countryCode string) (Region, error) {
	regions, err := c.ListRegions(ctx)
	if err != nil {
		return Region{}, err
	}
	if strings.TrimSpace(countryCode) == "" {
		return Region{}, ErrRegionNotFound
	}
	for _, r := range regions {
		if r.HasCountry(countryCode) {
			return r, nil
		}
	}
	return Region{}, ErrRegionNotFound
}

// RetrieveCart fetches a cart with its items.
func (c *Client) RetrieveCart(ctx context.Context, id string) (*Cart, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	query := url.Values{}
	query.Set("fields", "*items, *region, *items.product, *items.variant, *items.thumbnail, +items.total, +shipping_methods.name, *payment_collection.payment_sessions")
	var payload struct {
		Cart Cart `json:"cart"`
	}
	err := c.Do(ctx, Request{
		Name:  "retrieve_cart",
		Path:  "/store/carts/" + url.PathEscape(id),
		Query: query,
		Tags:  []string{TagCarts},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return &payload.Cart, nil
}

// CreateCart opens a cart priced in the region.
func (c *Client) CreateCart(ctx context.Context, regionID string) (*Cart, error) {
	return c.cartMutation(ctx, "create_cart", http.MethodPost, "/store/carts", map[string]any{"region_id": regionID})
}

// AddLineItem adds quantity units of a variant to the cart.
func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*Cart, error) {
	return c.cartMutation(ctx, "add_line_item", http.MethodPost,
		"/store/carts/"+url.PathEscape(cartID)+"/line-items",
		map[string]any{"variant_id": variantID, "quantity": quantity})
}

// UpdateLineItem sets the quantity of a line.
func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int) (*Cart, error) {
	return c.cartMutation(ctx, "update_line_item", http.MethodPost,
		"/store/carts/"+url.PathEscape(cartID)+"/line-items/"+url.PathEscape(lineID),
		map[string]any{"quantity": quantity})
}

// DeleteLineItem removes a line from the cart.
func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID string) (*Cart, error) {
	var payload struct {
		Parent *Cart `json:"parent"`
	}
	err := c.Do(ctx, Request{
		Name:   "delete_line_item",
		Method: http.MethodDelete,
		Path:   "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID),
	}, &payload)
	c.Invalidate(TagCarts, TagFulfillment)
	if err != nil {
		return nil, err
	}
	return payload.Parent, nil
}

// CartUpdate carries checkout details.
type CartUpdate struct {
	Email           string   `json:"email,omitempty"`
	ShippingAddress *Address `json:"shipping_address,omitempty"`
	BillingAddress  *Address `json:"billing_address,omitempty"`
}

// UpdateCart stores contact and address details on the cart.
func (c *Client) UpdateCart(ctx context.Context, cartID string, update CartUpdate) (*Cart, error) {
	return c.cartMutation(ctx, "update_cart", http.MethodPost, "/store/carts/"+url.PathEscape(cartID), update)
}

// ListShippingOptions returns the delivery choices available to the cart.
func (c *Client) ListShippingOptions(ctx context.Context, cartID string) ([]ShippingOption, error) {
	query := url.Values{}
	query.Set("cart_id", cartID)
	var payload struct {
		ShippingOptions []ShippingOption `json:"shipping_options"`
	}
	err := c.Do(ctx, Request{
		Name:  "list_shipping_options",
		Path:  "/store/shipping-options",
		Query: query,
		Tags:  []string{TagFulfillment},
	}, &payload)
	if err != nil {
		return nil, err
	}
	return payload.ShippingOptions, nil
}

// AddShippingMethod applies a shipping option to the cart.
func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*Cart, error) {
	return c.cartMutation(ctx, "add_shipping_method", http.MethodPost,
		"/store/carts/"+url.PathEscape(cartID)+"/shipping-methods",
		map[string]any{"option_id": optionID})
}

// InitiatePaymentSession creates the cart's payment collection when missing and
// opens a session with the provider.
func (c *Client) InitiatePaymentSession(ctx context.Context, cart *Cart, providerID string) (PaymentCollection, error) {
	if cart == nil {
		return PaymentCollection{}, ErrNotFound
	}
	collectionID := ""
	if cart.PaymentCollection != nil {
		collectionID = cart.PaymentCollection.ID
	}
	if collectionID == "" {
		var created struct {
			PaymentCollection PaymentCollection `json:"payment_collection"`
		}
		err := c.Do(ctx, Request{
			Name:   "create_payment_collection",
			Method: http.MethodPost,
			Path:   "/store/payment-collections",
			Body:   map[string]any{"cart_id": cart.ID},
		}, &created)
		if err != nil {
			return PaymentCollection{}, err
		}
		collectionID = created.PaymentCollection.ID
	}

	var payload struct {
		PaymentCollection PaymentCollection `json:"payment_collection"`
	}
	err := c.Do(ctx, Request{
		Name:   "initiate_payment_session",
		Method: http.MethodPost,
		Path:   "/store/payment-collections/" + url.PathEscape(collectionID) + "/payment-sessions",
		Body:   map[string]any{"provider_id": providerID},
	}, &payload)
	c.Invalidate(TagCarts)
	if err != nil {
		return PaymentCollection{}, err
	}
	return payload.PaymentCollection, nil
}

// CompleteCart places the order. A reply that still carries a cart means the
// backend refused to complete it.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (Order, error) {
	var payload struct {
		Type  string `json:"type"`
		Order *Order `json:"order"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	err := c.Do(ctx, Request{
		Name:   "complete_cart",
		Method: http.MethodPost,
		Path:   "/store/carts/" + url.PathEscape(cartID) + "/complete",
	}, &payload)
	c.Invalidate(TagCarts, TagFulfillment)
	if err != nil {
		return Order{}, err
	}
	if payload.Type != "order" || payload.Order == nil {
		msg := "cart could not be completed"
		if payload.Error != nil && payload.Error.Message != "" {
			msg = payload.Error.Message
		}
		return Order{}, &APIError{Status: http.StatusConflict, Code: "cart_incomplete", Message: msg, Path: "/store/carts/" + cartID + "/complete"}
	}
	return *payload.Order, nil
}

// RetrieveOrder fetches a placed order.
func (c *Client) RetrieveOrder(ctx context.Context, id string) (Order, error) {
	if strings.TrimSpace(id) == "" {
		return Order{}, ErrNotFound
	}
	var payload struct {
		Order Order `json:"order"`
	}
	err := c.Do(ctx, Request{
		Name:  "retrieve_order",
		Path:  "/store/orders/" + url.PathEscape(id),
		Cache: NoStore,
	}, &payload)
	if err != nil {
		return Order{}, err
	}
	return payload.Order, nil
}

func (c *Client) cartMutation(ctx context.Context, name, method, path string, body any) (*Cart, error) {
	var payload struct {
		Cart Cart `json:"cart"`
	}
	err := c.Do(ctx, Request{Name: name, Method: method, Path: path, Body: body}, &payload)
	c.Invalidate(TagCarts, TagFulfillment)
	if err != nil {
		return nil, err
	}
	return &payload.Cart, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
