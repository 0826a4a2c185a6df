package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// AdminClient wraps Client for the admin API. Admin calls never touch the cache.
type AdminClient struct {
	c *Client
}

// NewAdminClient builds an admin client authenticated with token.
func NewAdminClient(baseURL, token string, opts ...Option) *AdminClient {
	opts = append(opts, WithToken(token), WithDevMode(true))
	return &AdminClient{c: NewClient(baseURL, opts...)}
}

// Entity is the id/name pair most admin replies reduce to.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Store is the backend store record.
type Store struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	DefaultSalesChannelID string `json:"default_sales_channel_id"`
	DefaultLocationID     string `json:"default_location_id"`
}

// StoreCurrency is a supported store currency.
type StoreCurrency struct {
	CurrencyCode string `json:"currency_code"`
	IsDefault    bool   `json:"is_default"`
}

// StoreUpdate changes store settings. Empty fields are left untouched.
type StoreUpdate struct {
	SupportedCurrencies   []StoreCurrency `json:"supported_currencies,omitempty"`
	DefaultSalesChannelID string          `json:"default_sales_channel_id,omitempty"`
	DefaultLocationID     string          `json:"default_location_id,omitempty"`
}

// RegionInput creates a region.
type RegionInput struct {
	Name             string   `json:"name"`
	CurrencyCode     string   `json:"currency_code"`
	Countries        []string `json:"countries"`
	PaymentProviders []string `json:"payment_providers,omitempty"`
}

// StockLocationAddress is the postal address of a stock location.
type StockLocationAddress struct {
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code"`
	Address1    string `json:"address_1"`
}

// StockLocationInput creates a stock location.
type StockLocationInput struct {
	Name    string               `json:"name"`
	Address StockLocationAddress `json:"address"`
}

// GeoZone restricts a service zone to a country.
type GeoZone struct {
	CountryCode string `json:"country_code"`
	Type        string `json:"type"`
}

// ServiceZoneInput creates a service zone in a fulfillment set.
type ServiceZoneInput struct {
	Name     string    `json:"name"`
	GeoZones []GeoZone `json:"geo_zones"`
}

// FulfillmentSet is a fulfillment set with its service zones.
type FulfillmentSet struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ServiceZones []Entity `json:"service_zones"`
}

// ShippingOptionType labels a shipping option.
type ShippingOptionType struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// ShippingPrice is a flat shipping price in a currency or region.
type ShippingPrice struct {
	CurrencyCode string          `json:"currency_code,omitempty"`
	RegionID     string          `json:"region_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
}

// ShippingRule gates a shipping option.
type ShippingRule struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Operator  string `json:"operator"`
}

// ShippingOptionInput creates a shipping option.
type ShippingOptionInput struct {
	Name              string             `json:"name"`
	PriceType         string             `json:"price_type"`
	ProviderID        string             `json:"provider_id"`
	ServiceZoneID     string             `json:"service_zone_id"`
	ShippingProfileID string             `json:"shipping_profile_id"`
	Type              ShippingOptionType `json:"type"`
	Prices            []ShippingPrice    `json:"prices"`
	Rules             []ShippingRule     `json:"rules"`
}

// CategoryInput creates a product category.
type CategoryInput struct {
	Name     string `json:"name"`
	Handle   string `json:"handle,omitempty"`
	IsActive bool   `json:"is_active"`
}

// ProductOptionInput declares an option axis and its values.
type ProductOptionInput struct {
	Title  string   `json:"title"`
	Values []string `json:"values"`
}

// VariantPrice is a variant price in a currency.
type VariantPrice struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

// VariantInput creates a product variant.
type VariantInput struct {
	Title   string            `json:"title"`
	SKU     string            `json:"sku,omitempty"`
	Options map[string]string `json:"options"`
	Prices  []VariantPrice    `json:"prices"`
}

// ProductImageInput references a product image by URL.
type ProductImageInput struct {
	URL string `json:"url"`
}

// IDRef is an {"id": ...} reference.
type IDRef struct {
	ID string `json:"id"`
}

// ProductInput creates a published product.
type ProductInput struct {
	Title             string               `json:"title"`
	Handle            string               `json:"handle"`
	Description       string               `json:"description,omitempty"`
	Status            string               `json:"status"`
	Weight            int                  `json:"weight,omitempty"`
	CategoryIDs       []string             `json:"category_ids,omitempty"`
	ShippingProfileID string               `json:"shipping_profile_id,omitempty"`
	Images            []ProductImageInput  `json:"images,omitempty"`
	Options           []ProductOptionInput `json:"options"`
	Variants          []VariantInput       `json:"variants"`
	SalesChannels     []IDRef              `json:"sales_channels,omitempty"`
}

// InventoryLevelInput stocks an inventory item at a location.
type InventoryLevelInput struct {
	InventoryItemID string `json:"inventory_item_id"`
	LocationID      string `json:"location_id"`
	StockedQuantity int    `json:"stocked_quantity"`
}

// ListSalesChannels returns sales channels with the given name.
func (a *AdminClient) ListSalesChannels(ctx context.Context, name string) ([]Entity, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	var payload struct {
		SalesChannels []Entity `json:"sales_channels"`
	}
	err := a.get(ctx, "list_sales_channels", "/admin/sales-channels", query, &payload)
	return payload.SalesChannels, err
}

// CreateSalesChannel creates a sales channel.
func (a *AdminClient) CreateSalesChannel(ctx context.Context, name string) (Entity, error) {
	var payload struct {
		SalesChannel Entity `json:"sales_channel"`
	}
	err := a.post(ctx, "create_sales_channel", "/admin/sales-channels", map[string]any{"name": name}, &payload)
	return payload.SalesChannel, err
}

// GetStore returns the first store of the backend.
func (a *AdminClient) GetStore(ctx context.Context) (Store, error) {
	var payload struct {
		Stores []Store `json:"stores"`
	}
	if err := a.get(ctx, "list_stores", "/admin/stores", nil, &payload); err != nil {
		return Store{}, err
	}
	if len(payload.Stores) == 0 {
		return Store{}, ErrNotFound
	}
	return payload.Stores[0], nil
}

// UpdateStore applies update to the store.
func (a *AdminClient) UpdateStore(ctx context.Context, id string, update StoreUpdate) (Store, error) {
	var payload struct {
		Store Store `json:"store"`
	}
	err := a.post(ctx, "update_store", "/admin/stores/"+url.PathEscape(id), update, &payload)
	return payload.Store, err
}

// CreateRegion creates a region.
func (a *AdminClient) CreateRegion(ctx context.Context, in RegionInput) (Region, error) {
	var payload struct {
		Region Region `json:"region"`
	}
	err := a.post(ctx, "create_region", "/admin/regions", in, &payload)
	return payload.Region, err
}

// CreateTaxRegion creates a tax region for a country.
func (a *AdminClient) CreateTaxRegion(ctx context.Context, countryCode, providerID string) (Entity, error) {
	var payload struct {
		TaxRegion Entity `json:"tax_region"`
	}
	err := a.post(ctx, "create_tax_region", "/admin/tax-regions",
		map[string]any{"country_code": countryCode, "provider_id": providerID}, &payload)
	return payload.TaxRegion, err
}

// CreateStockLocation creates a stock location.
func (a *AdminClient) CreateStockLocation(ctx context.Context, in StockLocationInput) (Entity, error) {
	var payload struct {
		StockLocation Entity `json:"stock_location"`
	}
	err := a.post(ctx, "create_stock_location", "/admin/stock-locations", in, &payload)
	return payload.StockLocation, err
}

// AddFulfillmentProvider links a fulfillment provider to a stock location.
func (a *AdminClient) AddFulfillmentProvider(ctx context.Context, locationID, providerID string) error {
	return a.post(ctx, "link_fulfillment_provider",
		"/admin/stock-locations/"+url.PathEscape(locationID)+"/fulfillment-providers",
		map[string]any{"add": []string{providerID}}, nil)
}

// AddLocationSalesChannels links sales channels to a stock location.
func (a *AdminClient) AddLocationSalesChannels(ctx context.Context, locationID string, channelIDs ...string) error {
	return a.post(ctx, "link_location_sales_channels",
		"/admin/stock-locations/"+url.PathEscape(locationID)+"/sales-channels",
		map[string]any{"add": channelIDs}, nil)
}

// CreateFulfillmentSet creates a shipping fulfillment set attached to a stock location.
func (a *AdminClient) CreateFulfillmentSet(ctx context.Context, locationID, name string) (FulfillmentSet, error) {
	var payload struct {
		StockLocation struct {
			FulfillmentSets []FulfillmentSet `json:"fulfillment_sets"`
		} `json:"stock_location"`
	}
	err := a.post(ctx, "create_fulfillment_set",
		"/admin/stock-locations/"+url.PathEscape(locationID)+"/fulfillment-sets",
		map[string]any{"name": name, "type": "shipping"}, &payload)
	if err != nil {
		return FulfillmentSet{}, err
	}
	for _, set := range payload.StockLocation.FulfillmentSets {
		if set.Name == name {
			return set, nil
		}
	}
	return FulfillmentSet{}, ErrNotFound
}

// CreateServiceZone adds a service zone to a fulfillment set and returns the
// created zone.
func (a *AdminClient) CreateServiceZone(ctx context.Context, setID string, in ServiceZoneInput) (Entity, error) {
	var payload struct {
		FulfillmentSet FulfillmentSet `json:"fulfillment_set"`
	}
	err := a.post(ctx, "create_service_zone",
		"/admin/fulfillment-sets/"+url.PathEscape(setID)+"/service-zones", in, &payload)
	if err != nil {
		return Entity{}, err
	}
	for _, zone := range payload.FulfillmentSet.ServiceZones {
		if zone.Name == in.Name {
			return zone, nil
		}
	}
	return Entity{}, ErrNotFound
}

// ListShippingProfiles returns shipping profiles of a type.
func (a *AdminClient) ListShippingProfiles(ctx context.Context, profileType string) ([]Entity, error) {
	query := url.Values{}
	if profileType != "" {
		query.Set("type", profileType)
	}
	var payload struct {
		ShippingProfiles []Entity `json:"shipping_profiles"`
	}
	err := a.get(ctx, "list_shipping_profiles", "/admin/shipping-profiles", query, &payload)
	return payload.ShippingProfiles, err
}

// CreateShippingProfile creates a shipping profile.
func (a *AdminClient) CreateShippingProfile(ctx context.Context, name, profileType string) (Entity, error) {
	var payload struct {
		ShippingProfile Entity `json:"shipping_profile"`
	}
	err := a.post(ctx, "create_shipping_profile", "/admin/shipping-profiles",
		map[string]any{"name": name, "type": profileType}, &payload)
	return payload.ShippingProfile, err
}

// CreateShippingOption creates a shipping option.
func (a *AdminClient) CreateShippingOption(ctx context.Context, in ShippingOptionInput) (Entity, error) {
	var payload struct {
		ShippingOption Entity `json:"shipping_option"`
	}
	err := a.post(ctx, "create_shipping_option", "/admin/shipping-options", in, &payload)
	return payload.ShippingOption, err
}

// CreatePublishableKey creates a publishable API key and returns its id and token.
func (a *AdminClient) CreatePublishableKey(ctx context.Context, title string) (id, token string, err error) {
	var payload struct {
		APIKey struct {
			ID    string `json:"id"`
			Token string `json:"token"`
		} `json:"api_key"`
	}
	err = a.post(ctx, "create_api_key", "/admin/api-keys",
		map[string]any{"title": title, "type": "publishable"}, &payload)
	return payload.APIKey.ID, payload.APIKey.Token, err
}

// AddKeySalesChannels links sales channels to a publishable key.
func (a *AdminClient) AddKeySalesChannels(ctx context.Context, keyID string, channelIDs ...string) error {
	return a.post(ctx, "link_key_sales_channels",
		"/admin/api-keys/"+url.PathEscape(keyID)+"/sales-channels",
		map[string]any{"add": channelIDs}, nil)
}

// CreateCategory creates a product category.
func (a *AdminClient) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	var payload struct {
		ProductCategory Category `json:"product_category"`
	}
	err := a.post(ctx, "create_category", "/admin/product-categories", in, &payload)
	return payload.ProductCategory, err
}

// CreateProduct creates a product with its variants.
func (a *AdminClient) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var payload struct {
		Product Product `json:"product"`
	}
	err := a.post(ctx, "create_product", "/admin/products", in, &payload)
	return payload.Product, err
}

// ListInventoryItems pages through every inventory item id.
func (a *AdminClient) ListInventoryItems(ctx context.Context) ([]string, error) {
	const pageSize = 100
	var ids []string
	for offset := 0; ; offset += pageSize {
		query := url.Values{}
		query.Set("fields", "id")
		query.Set("limit", strconv.Itoa(pageSize))
		query.Set("offset", strconv.Itoa(offset))
		var payload struct {
			InventoryItems []Entity `json:"inventory_items"`
			Count          int      `json:"count"`
		}
		if err := a.get(ctx, "list_inventory_items", "/admin/inventory-items", query, &payload); err != nil {
			return nil, err
		}
		for _, item := range payload.InventoryItems {
			ids = append(ids, item.ID)
		}
		if len(payload.InventoryItems) < pageSize || len(ids) >= payload.Count {
			return ids, nil
		}
	}
}

// CreateInventoryLevels stocks inventory items in one batch.
func (a *AdminClient) CreateInventoryLevels(ctx context.Context, levels []InventoryLevelInput) error {
	if len(levels) == 0 {
		return nil
	}
	return a.post(ctx, "create_inventory_levels", "/admin/inventory-items/location-levels/batch",
		map[string]any{"create": levels}, nil)
}

func (a *AdminClient) get(ctx context.Context, name, path string, query url.Values, out any) error {
	return a.c.Do(ctx, Request{Name: "admin." + name, Path: path, Query: query, Cache: NoStore}, out)
}

func (a *AdminClient) post(ctx context.Context, name, path string, body, out any) error {
	return a.c.Do(ctx, Request{Name: "admin." + name, Method: http.MethodPost, Path: path, Body: body}, out)
}
