package main

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"macollections.com/storefront/internal/carousel"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/handlers"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/seo"
	"macollections.com/storefront/internal/showcase"
)

// HomeHandler renders the landing page. The region is resolved first; the
// collections, categories and products are then fetched concurrently and any
// failure aborts the render.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region, err := a.store.GetRegion(ctx, mw.CountryCode(ctx))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var (
		collections []commerce.Collection
		categories  []commerce.Category
		products    []commerce.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		collections, _, err = a.store.ListCollections(gctx, commerce.CollectionQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = a.store.ListCategories(gctx, commerce.CategoryQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		products, _, err = a.store.ListProducts(gctx, commerce.ProductQuery{
			RegionID: region.ID,
			Limit:    listingFetchLimit,
			Fields:   commerce.ProductListFields,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		a.fail(w, r, err)
		return
	}

	f := a.formatter(r)
	sc := showcase.Compose(categories, products, region, a.showcase, f)

	// The browser drives the slides; the server renders the initial state and timing.
	hero := carousel.New(len(a.slides), a.sched, carousel.Options{})
	snap := hero.Snapshot()
	hero.Close()

	page := a.newPage(r, categories)
	page.SEO.Title = seo.PageTitle("")
	page.SEO.Description = a.t(r, "home.description")
	page.SEO.OG.Title = page.SEO.Title
	page.SEO.OG.Description = page.SEO.Description
	if len(a.slides) > 0 {
		page.SEO.OG.Image = a.slides[0].Image
	}
	page.SEO.JSONLD = append(page.SEO.JSONLD, seo.JSON(seo.Organization(seo.SiteName, siteRoot(r), "")))
	page.Content = handlers.BuildHomeData(a.slides, snap, sc, collections, products, f)
	a.renderPage(w, r, http.StatusOK, "home", page)
}
