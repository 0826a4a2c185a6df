package seed

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/commerce"
)

const (
	profileTypeDefault = "default"
	productPublished   = "published"
)

// AdminAPI is the slice of the admin API the runner drives.
// *commerce.AdminClient satisfies it.
type AdminAPI interface {
	ListSalesChannels(ctx context.Context, name string) ([]commerce.Entity, error)
	CreateSalesChannel(ctx context.Context, name string) (commerce.Entity, error)
	GetStore(ctx context.Context) (commerce.Store, error)
	UpdateStore(ctx context.Context, id string, update commerce.StoreUpdate) (commerce.Store, error)
	CreateRegion(ctx context.Context, in commerce.RegionInput) (commerce.Region, error)
	CreateTaxRegion(ctx context.Context, countryCode, providerID string) (commerce.Entity, error)
	CreateStockLocation(ctx context.Context, in commerce.StockLocationInput) (commerce.Entity, error)
	AddFulfillmentProvider(ctx context.Context, locationID, providerID string) error
	AddLocationSalesChannels(ctx context.Context, locationID string, channelIDs ...string) error
	CreateFulfillmentSet(ctx context.Context, locationID, name string) (commerce.FulfillmentSet, error)
	CreateServiceZone(ctx context.Context, setID string, in commerce.ServiceZoneInput) (commerce.Entity, error)
	ListShippingProfiles(ctx context.Context, profileType string) ([]commerce.Entity, error)
	CreateShippingProfile(ctx context.Context, name, profileType string) (commerce.Entity, error)
	CreateShippingOption(ctx context.Context, in commerce.ShippingOptionInput) (commerce.Entity, error)
	CreatePublishableKey(ctx context.Context, title string) (id, token string, err error)
	AddKeySalesChannels(ctx context.Context, keyID string, channelIDs ...string) error
	CreateCategory(ctx context.Context, in commerce.CategoryInput) (commerce.Category, error)
	CreateProduct(ctx context.Context, in commerce.ProductInput) (commerce.Product, error)
	ListInventoryItems(ctx context.Context) ([]string, error)
	CreateInventoryLevels(ctx context.Context, levels []commerce.InventoryLevelInput) error
}

var _ AdminAPI = (*commerce.AdminClient)(nil)

// Result lists what a run created.
type Result struct {
	RunID           string
	SalesChannelID  string
	RegionIDs       map[string]string
	StockLocationID string
	ShippingProfile string
	PublishableKey  string
	CategoryIDs     map[string]string
	ProductIDs      []string
	InventoryLevels int
}

// Runner applies a plan against the admin API. Runs are not idempotent and
// stop at the first failing step.
type Runner struct {
	api    AdminAPI
	logger *zap.Logger
}

// NewRunner builds a runner. A nil logger discards output.
func NewRunner(api AdminAPI, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{api: api, logger: logger}
}

// Run executes the plan step by step.
func (r *Runner) Run(ctx context.Context, plan Plan) (Result, error) {
	if err := plan.Validate(); err != nil {
		return Result{}, err
	}
	res := Result{
		RunID:       ulid.Make().String(),
		RegionIDs:   make(map[string]string, len(plan.Regions)),
		CategoryIDs: make(map[string]string, len(plan.Categories)),
	}
	log := r.logger.With(zap.String("run_id", res.RunID))
	log.Info(fmt.Sprintf("Seeding %s store data...", storeName(plan)))

	steps := []struct {
		name string
		fn   func(context.Context, Plan, *Result, *zap.Logger) error
	}{
		{"store", r.seedStore},
		{"regions", r.seedRegions},
		{"tax_regions", r.seedTaxRegions},
		{"stock_location", r.seedStockLocation},
		{"publishable_key", r.seedPublishableKey},
		{"products", r.seedProducts},
		{"inventory", r.seedInventory},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := step.fn(ctx, plan, &res, log); err != nil {
			log.Error("seed step failed", zap.String("step", step.name), zap.Error(err))
			return res, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	log.Info(fmt.Sprintf("%s store setup complete!", storeName(plan)))
	return res, nil
}

func (r *Runner) seedStore(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	channels, err := r.api.ListSalesChannels(ctx, plan.SalesChannel)
	if err != nil {
		return err
	}
	if len(channels) > 0 {
		res.SalesChannelID = channels[0].ID
	} else {
		created, err := r.api.CreateSalesChannel(ctx, plan.SalesChannel)
		if err != nil {
			return err
		}
		res.SalesChannelID = created.ID
	}

	store, err := r.api.GetStore(ctx)
	if err != nil {
		return err
	}
	update := commerce.StoreUpdate{DefaultSalesChannelID: res.SalesChannelID}
	for _, c := range plan.Currencies {
		update.SupportedCurrencies = append(update.SupportedCurrencies, commerce.StoreCurrency{
			CurrencyCode: strings.ToLower(c.Code),
			IsDefault:    c.Default,
		})
	}
	_, err = r.api.UpdateStore(ctx, store.ID, update)
	return err
}

func (r *Runner) seedRegions(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding region data...")
	for _, region := range plan.Regions {
		created, err := r.api.CreateRegion(ctx, commerce.RegionInput{
			Name:             region.Name,
			CurrencyCode:     strings.ToLower(region.Currency),
			Countries:        lower(region.Countries),
			PaymentProviders: region.PaymentProviders,
		})
		if err != nil {
			return err
		}
		res.RegionIDs[region.Name] = created.ID
	}
	log.Info("Finished seeding regions.")
	return nil
}

func (r *Runner) seedTaxRegions(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding tax regions...")
	for _, region := range plan.Regions {
		for _, country := range lower(region.Countries) {
			if _, err := r.api.CreateTaxRegion(ctx, country, plan.TaxProvider); err != nil {
				return err
			}
		}
	}
	log.Info("Finished seeding tax regions.")
	return nil
}

func (r *Runner) seedStockLocation(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding stock location data...")
	loc := plan.StockLocation
	location, err := r.api.CreateStockLocation(ctx, commerce.StockLocationInput{
		Name: loc.Name,
		Address: commerce.StockLocationAddress{
			City:        loc.City,
			CountryCode: loc.CountryCode,
			Address1:    loc.Address,
		},
	})
	if err != nil {
		return err
	}
	res.StockLocationID = location.ID

	store, err := r.api.GetStore(ctx)
	if err != nil {
		return err
	}
	if _, err := r.api.UpdateStore(ctx, store.ID, commerce.StoreUpdate{DefaultLocationID: location.ID}); err != nil {
		return err
	}
	provider := firstNonEmpty(loc.FulfillmentProvider, "manual_manual")
	if err := r.api.AddFulfillmentProvider(ctx, location.ID, provider); err != nil {
		return err
	}

	log.Info("Seeding fulfillment data...")
	profiles, err := r.api.ListShippingProfiles(ctx, profileTypeDefault)
	if err != nil {
		return err
	}
	if len(profiles) > 0 {
		res.ShippingProfile = profiles[0].ID
	} else {
		created, err := r.api.CreateShippingProfile(ctx, firstNonEmpty(plan.ShippingProfile, "Default Shipping Profile"), profileTypeDefault)
		if err != nil {
			return err
		}
		res.ShippingProfile = created.ID
	}

	set, err := r.api.CreateFulfillmentSet(ctx, location.ID, plan.Fulfillment.Name)
	if err != nil {
		return err
	}
	zone := commerce.ServiceZoneInput{Name: plan.Fulfillment.ServiceZone}
	for _, country := range lower(plan.Fulfillment.Countries) {
		zone.GeoZones = append(zone.GeoZones, commerce.GeoZone{CountryCode: country, Type: "country"})
	}
	serviceZone, err := r.api.CreateServiceZone(ctx, set.ID, zone)
	if err != nil {
		return err
	}

	for _, option := range plan.ShippingOptions {
		currency := strings.ToLower(option.Currency)
		prices := []commerce.ShippingPrice{{CurrencyCode: currency, Amount: option.Amount}}
		for _, region := range plan.Regions {
			if strings.EqualFold(region.Currency, currency) {
				prices = append(prices, commerce.ShippingPrice{RegionID: res.RegionIDs[region.Name], Amount: option.Amount})
			}
		}
		_, err := r.api.CreateShippingOption(ctx, commerce.ShippingOptionInput{
			Name:              option.Name,
			PriceType:         "flat",
			ProviderID:        provider,
			ServiceZoneID:     serviceZone.ID,
			ShippingProfileID: res.ShippingProfile,
			Type: commerce.ShippingOptionType{
				Label:       option.Label,
				Description: option.Description,
				Code:        option.Code,
			},
			Prices: prices,
			Rules: []commerce.ShippingRule{
				{Attribute: "enabled_in_store", Value: "true", Operator: "eq"},
				{Attribute: "is_return", Value: "false", Operator: "eq"},
			},
		})
		if err != nil {
			return err
		}
	}
	log.Info("Finished seeding fulfillment data.")

	if err := r.api.AddLocationSalesChannels(ctx, location.ID, res.SalesChannelID); err != nil {
		return err
	}
	log.Info("Finished seeding stock location data.")
	return nil
}

func (r *Runner) seedPublishableKey(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding publishable API key data...")
	id, token, err := r.api.CreatePublishableKey(ctx, firstNonEmpty(plan.PublishableKey, storeName(plan)+" Webshop"))
	if err != nil {
		return err
	}
	res.PublishableKey = token
	if err := r.api.AddKeySalesChannels(ctx, id, res.SalesChannelID); err != nil {
		return err
	}
	log.Info("Finished seeding publishable API key data.")
	return nil
}

func (r *Runner) seedProducts(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding product data...")
	for _, c := range plan.Categories {
		created, err := r.api.CreateCategory(ctx, commerce.CategoryInput{Name: c.Name, Handle: c.Handle, IsActive: true})
		if err != nil {
			return err
		}
		res.CategoryIDs[c.Name] = created.ID
	}

	for _, prod := range plan.Products {
		in := commerce.ProductInput{
			Title:             prod.Title,
			Handle:            prod.Handle,
			Description:       prod.Description,
			Status:            productPublished,
			Weight:            prod.Weight,
			ShippingProfileID: res.ShippingProfile,
			Variants:          prod.VariantInputs(),
			SalesChannels:     []commerce.IDRef{{ID: res.SalesChannelID}},
		}
		for _, name := range prod.Categories {
			in.CategoryIDs = append(in.CategoryIDs, res.CategoryIDs[name])
		}
		for _, url := range prod.Images {
			in.Images = append(in.Images, commerce.ProductImageInput{URL: url})
		}
		for _, o := range prod.Options {
			in.Options = append(in.Options, commerce.ProductOptionInput{Title: o.Title, Values: o.Values})
		}
		created, err := r.api.CreateProduct(ctx, in)
		if err != nil {
			return fmt.Errorf("product %s: %w", prod.Handle, err)
		}
		res.ProductIDs = append(res.ProductIDs, created.ID)
	}
	log.Info("Finished seeding product data.", zap.Int("products", len(res.ProductIDs)))
	return nil
}

func (r *Runner) seedInventory(ctx context.Context, plan Plan, res *Result, log *zap.Logger) error {
	log.Info("Seeding inventory levels.")
	items, err := r.api.ListInventoryItems(ctx)
	if err != nil {
		return err
	}
	levels := make([]commerce.InventoryLevelInput, 0, len(items))
	for _, id := range items {
		levels = append(levels, commerce.InventoryLevelInput{
			InventoryItemID: id,
			LocationID:      res.StockLocationID,
			StockedQuantity: plan.StockedQuantity,
		})
	}
	if err := r.api.CreateInventoryLevels(ctx, levels); err != nil {
		return err
	}
	res.InventoryLevels = len(levels)
	log.Info("Finished seeding inventory levels data.")
	return nil
}

// Describe writes a human readable summary of what Run would create.
func Describe(w io.Writer, plan Plan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "store: %s (sales channel %q, default currency %s)\n", storeName(plan), plan.SalesChannel, plan.DefaultCurrency())
	for _, region := range plan.Regions {
		fmt.Fprintf(&b, "region: %s [%s] countries=%s\n", region.Name, region.Currency, strings.Join(region.Countries, ","))
	}
	fmt.Fprintf(&b, "stock location: %s, %s\n", plan.StockLocation.Name, plan.StockLocation.City)
	for _, option := range plan.ShippingOptions {
		fmt.Fprintf(&b, "shipping: %s %s %s\n", option.Name, option.Amount.String(), option.Currency)
	}
	fmt.Fprintf(&b, "categories: %d\n", len(plan.Categories))
	variants := 0
	for _, prod := range plan.Products {
		n := len(prod.VariantInputs())
		variants += n
		fmt.Fprintf(&b, "product: %s (%s) variants=%d\n", prod.Title, prod.Handle, n)
	}
	fmt.Fprintf(&b, "total: %d products, %d variants, stocked quantity %d\n", len(plan.Products), variants, plan.StockedQuantity)
	_, err := io.WriteString(w, b.String())
	return err
}

func storeName(plan Plan) string {
	return firstNonEmpty(plan.StoreName, "Demo")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func lower(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
