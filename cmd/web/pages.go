package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"macollections.com/storefront/internal/cartdropdown"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/handlers"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/nav"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seo"
)

// listingFetchLimit bounds the products fetched for a listing; sorting and
// paging happen over this set.
const listingFetchLimit = 100

func (a *app) formatter(r *http.Request) money.Formatter {
	return money.NewFormatter(mw.Lang(r))
}

func (a *app) t(r *http.Request, key string) string {
	return a.bundle.T(mw.Lang(r), key)
}

// newPage builds the layout data: navigation from categories (fetched when
// nil), breadcrumbs from the path and the header cart.
func (a *app) newPage(r *http.Request, categories []commerce.Category) handlers.PageData {
	return a.newCartPage(r, categories, a.loadCart(r.Context(), mw.GetSession(r)))
}

// newCartPage is newPage for handlers that already loaded the session cart.
func (a *app) newCartPage(r *http.Request, categories []commerce.Category, cart *commerce.Cart) handlers.PageData {
	ctx := r.Context()
	page := a.shellPage(r)
	if categories == nil {
		categories = a.navCategories(ctx)
	}
	page.Nav = nav.Build(page.CountryCode, r.URL.Path, categories, a.showcase.HiddenMarker)
	page.FooterCategories, page.FooterCollections = nav.Footer(page.CountryCode, categories, a.footerCollections(ctx), a.showcase.HiddenMarker)
	page.Cart = a.headerCart(r, cart)
	page.SEO.Canonical = absoluteURL(r)
	page.SEO.OG = seo.OpenGraph{Type: "website"}
	return page
}

// navCategories is best effort; the header renders without category links on failure.
func (a *app) navCategories(ctx context.Context) []commerce.Category {
	cats, err := a.store.ListCategories(ctx, commerce.CategoryQuery{})
	if err != nil {
		observability.FromContext(ctx).Warn("nav categories unavailable", zap.Error(err))
		return nil
	}
	return cats
}

// footerCollections is best effort like navCategories.
func (a *app) footerCollections(ctx context.Context) []commerce.Collection {
	cols, _, err := a.store.ListCollections(ctx, commerce.CollectionQuery{})
	if err != nil {
		observability.FromContext(ctx).Warn("footer collections unavailable", zap.Error(err))
		return nil
	}
	return cols
}

// loadCart returns the session's cart, or nil. A cart the backend no longer
// knows is dropped from the session.
func (a *app) loadCart(ctx context.Context, sess *mw.SessionData) *commerce.Cart {
	if sess.CartID == "" {
		return nil
	}
	cart, err := a.store.RetrieveCart(ctx, sess.CartID)
	if errors.Is(err, commerce.ErrNotFound) {
		sess.SetCart("")
		return nil
	}
	if err != nil {
		observability.FromContext(ctx).Warn("cart unavailable", zap.Error(err), zap.String("cart_id", sess.CartID))
		return nil
	}
	return cart
}

// headerCart opens the dropdown when the item total differs from the one the
// visitor last saw, except on the cart page, then records the new total.
func (a *app) headerCart(r *http.Request, cart *commerce.Cart) cartdropdown.Panel {
	sess := mw.GetSession(r)
	d := cartdropdown.New(sess.CartCount, a.sched, cartdropdown.DefaultCloseDelay)
	defer d.Close()
	total := cart.TotalItems()
	open := d.Sync(total, mw.CurrentPath(r.Context()))
	sess.SetCartCount(total)
	p := cartdropdown.BuildPanel(cart, open, a.formatter(r))
	p.AutoCloseAfter = d.CloseDelay()
	return p
}

func (a *app) countryPath(r *http.Request, suffix string) string {
	return "/" + mw.CountryCode(r.Context()) + suffix
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.Path
}

func siteRoot(r *http.Request) string {
	return strings.TrimSuffix(absoluteURL(r), r.URL.Path) + "/"
}

// localRedirect returns target when it is a path inside the country prefix,
// otherwise fallback.
func localRedirect(r *http.Request, target, fallback string) string {
	prefix := "/" + mw.CountryCode(r.Context())
	if target == prefix || strings.HasPrefix(target, prefix+"/") {
		if !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
			return target
		}
	}
	return fallback
}
