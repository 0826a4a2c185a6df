package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"macollections.com/storefront/internal/catalog"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/content"
	"macollections.com/storefront/internal/handlers"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/nav"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seo"
)

// StoreHandler lists every product, sorted by ?sortBy= and paged by ?page=.
func (a *app) StoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region, err := a.store.GetRegion(ctx, mw.CountryCode(ctx))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	products, _, err := a.store.ListProducts(ctx, commerce.ProductQuery{
		RegionID: region.ID,
		Limit:    listingFetchLimit,
		Fields:   commerce.ProductListFields,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	data := a.listing(r, a.countryPath(r, "/store"), products)
	data.Title = a.t(r, "store.title")
	data.Description = a.t(r, "store.description")

	page := a.newPage(r, nil)
	page.SEO.Title = seo.PageTitle(data.Title)
	page.SEO.Description = data.Description
	page.Content = data
	a.renderPage(w, r, http.StatusOK, "listing", page)
}

// CategoryHandler lists the products of a category and its descendants. The
// wildcard carries the nested handle ("hommes/t-shirts").
func (a *app) CategoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	segments := strings.Split(strings.Trim(chi.URLParam(r, "*"), "/"), "/")

	var (
		region   commerce.Region
		category commerce.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		region, err = a.store.GetRegion(gctx, mw.CountryCode(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		category, err = a.store.GetCategoryByHandle(gctx, segments)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}

	products, _, err := a.store.ListProducts(ctx, commerce.ProductQuery{
		RegionID:    region.ID,
		Limit:       listingFetchLimit,
		CategoryIDs: category.DescendantIDs(),
		Fields:      commerce.ProductListFields,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	cc := mw.CountryCode(ctx)
	data := a.listing(r, a.countryPath(r, "/categories/"+strings.Join(segments, "/")), products)
	data.Title = category.Name
	data.Description = category.Description
	data.Category = &category
	data.Subcategories = category.Children

	page := a.newPage(r, nil)
	page.Breadcrumbs = nav.CategoryTrail(cc, category)
	page.SEO.Title = seo.PageTitle(category.Name)
	page.SEO.Description = content.Excerpt(category.Description, 160)
	page.SEO.JSONLD = append(page.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(a.breadcrumbItems(r, page.Lang, page.Breadcrumbs))))
	page.Content = data
	a.renderPage(w, r, http.StatusOK, "listing", page)
}

// CollectionHandler lists the products of a collection.
func (a *app) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := chi.URLParam(r, "handle")

	var (
		region     commerce.Region
		collection commerce.Collection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		region, err = a.store.GetRegion(gctx, mw.CountryCode(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		collection, err = a.store.GetCollectionByHandle(gctx, handle)
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}

	products, _, err := a.store.ListProducts(ctx, commerce.ProductQuery{
		RegionID:      region.ID,
		Limit:         listingFetchLimit,
		CollectionIDs: []string{collection.ID},
		Fields:        commerce.ProductListFields,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	data := a.listing(r, a.countryPath(r, "/collections/"+collection.Handle), products)
	data.Title = collection.Title
	data.Collection = &collection

	page := a.newPage(r, nil)
	page.SEO.Title = seo.PageTitle(collection.Title)
	page.Content = data
	a.renderPage(w, r, http.StatusOK, "listing", page)
}

func (a *app) listing(r *http.Request, basePath string, products []commerce.Product) handlers.ListingData {
	q := r.URL.Query()
	return handlers.BuildListing(basePath, products, q.Get("sortBy"), catalog.ParsePage(q.Get("page")), a.formatter(r))
}

func (a *app) breadcrumbItems(r *http.Request, lang string, crumbs []nav.Crumb) []seo.BreadcrumbItem {
	root := strings.TrimSuffix(siteRoot(r), "/")
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for _, c := range crumbs {
		name := c.Label
		if c.LabelKey != "" {
			name = a.bundle.T(lang, c.LabelKey)
		}
		items = append(items, seo.BreadcrumbItem{Name: name, Item: root + c.Href})
	}
	return items
}

// ProductHandler renders a product; ?v_id= selects the variant.
func (a *app) ProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle := chi.URLParam(r, "handle")
	region, err := a.store.GetRegion(ctx, mw.CountryCode(ctx))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	product, err := a.store.GetProductByHandle(ctx, handle, region.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if product.Collection == nil && product.CollectionID != "" {
		product.Collection = a.productCollection(r, product.CollectionID)
	}

	cc := mw.CountryCode(ctx)
	data := handlers.BuildProduct(a.countryPath(r, "/products/"+product.Handle), product, r.URL.Query().Get("v_id"), a.formatter(r))

	page := a.newPage(r, nil)
	page.Breadcrumbs = nav.ProductTrail(cc, product)
	page.SEO.Title = seo.PageTitle(product.Title)
	page.SEO.Description = content.Excerpt(product.Description, 160)
	page.SEO.OG = seo.OpenGraph{Title: product.Title, Description: page.SEO.Description, Type: "product"}
	if len(data.Images) > 0 {
		page.SEO.OG.Image = data.Images[0]
	}
	offer := seo.Offer{URL: page.SEO.Canonical, InStock: data.InStock}
	if data.HasPrice {
		offer.Price = data.Price.CalculatedAmount.String()
		offer.Currency = strings.ToUpper(data.Price.CurrencyCode)
	}
	sku := ""
	if data.Selected != nil {
		sku = data.Selected.SKU
	}
	page.SEO.JSONLD = append(page.SEO.JSONLD, seo.JSON(seo.Product(product.Title, page.SEO.Description, page.SEO.Canonical, data.Images, sku, offer)))
	page.Content = data
	a.renderPage(w, r, http.StatusOK, "product", page)
}

// productCollection resolves a collection the product only references by id.
// The product page renders without the collection link on failure.
func (a *app) productCollection(r *http.Request, id string) *commerce.CollectionRef {
	ctx := r.Context()
	col, err := a.store.RetrieveCollection(ctx, id)
	if err != nil {
		observability.FromContext(ctx).Warn("product collection unavailable", zap.Error(err), zap.String("collection_id", id))
		return nil
	}
	return &commerce.CollectionRef{ID: col.ID, Title: col.Title, Handle: col.Handle}
}
