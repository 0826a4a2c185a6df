package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/handlers"
	"macollections.com/storefront/internal/httpx"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seo"
)

// cartUpdatedEvent is the HX-Trigger fired after every cart mutation.
const cartUpdatedEvent = "cart:updated"

// CartHandler renders the cart page.
func (a *app) CartHandler(w http.ResponseWriter, r *http.Request) {
	cart := a.loadCart(r.Context(), mw.GetSession(r))
	page := a.newCartPage(r, nil, cart)
	page.SEO.Title = seo.PageTitle(a.t(r, "cart.title"))
	page.Content = handlers.BuildCart(cart, a.formatter(r))
	a.renderPage(w, r, http.StatusOK, "cart", page)
}

// CartDropdownFrag renders the header cart panel for htmx refreshes. It opens
// when the total changed since the visitor's last render.
func (a *app) CartDropdownFrag(w http.ResponseWriter, r *http.Request) {
	cart := a.loadCart(r.Context(), mw.GetSession(r))
	a.renderFragment(w, r, http.StatusOK, "cart_dropdown", fragmentData{
		Lang:        mw.Lang(r),
		CountryCode: mw.CountryCode(r.Context()),
		CSRFToken:   mw.CSRFToken(r),
		Cart:        a.headerCart(r, cart),
	})
}

// AddLineItemHandler adds a variant to the session cart, creating the cart in
// the country's region on first add.
func (a *app) AddLineItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
		return
	}
	variantID := strings.TrimSpace(r.PostFormValue("variant_id"))
	if variantID == "" {
		a.fail(w, r, fmt.Errorf("%w: missing variant_id", httpx.ErrBadRequest))
		return
	}
	qty, err := parseQuantity(r.PostFormValue("quantity"), 1)
	if err != nil || qty < 1 {
		a.fail(w, r, fmt.Errorf("%w: invalid quantity", httpx.ErrBadRequest))
		return
	}

	sess := mw.GetSession(r)
	cart := a.loadCart(ctx, sess)
	if cart == nil {
		region, err := a.store.GetRegion(ctx, mw.CountryCode(ctx))
		if err != nil {
			a.fail(w, r, err)
			return
		}
		cart, err = a.store.CreateCart(ctx, region.ID)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		sess.SetCart(cart.ID)
		observability.FromContext(ctx).Info("cart created", zap.String("cart_id", cart.ID), zap.String("region_id", region.ID))
	}
	if _, err := a.store.AddLineItem(ctx, cart.ID, variantID, qty); err != nil {
		a.fail(w, r, err)
		return
	}
	a.cartMutated(w, r)
}

// UpdateLineItemHandler sets a line's quantity; zero removes the line.
func (a *app) UpdateLineItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		a.fail(w, r, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err))
		return
	}
	qty, err := parseQuantity(r.PostFormValue("quantity"), -1)
	if err != nil || qty < 0 {
		a.fail(w, r, fmt.Errorf("%w: invalid quantity", httpx.ErrBadRequest))
		return
	}
	cartID := mw.GetSession(r).CartID
	if cartID == "" {
		a.fail(w, r, commerce.ErrNotFound)
		return
	}
	lineID := chi.URLParam(r, "id")
	if qty == 0 {
		_, err = a.store.DeleteLineItem(ctx, cartID, lineID)
	} else {
		_, err = a.store.UpdateLineItem(ctx, cartID, lineID, qty)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.cartMutated(w, r)
}

// DeleteLineItemHandler removes a line from the cart.
func (a *app) DeleteLineItemHandler(w http.ResponseWriter, r *http.Request) {
	cartID := mw.GetSession(r).CartID
	if cartID == "" {
		a.fail(w, r, commerce.ErrNotFound)
		return
	}
	if _, err := a.store.DeleteLineItem(r.Context(), cartID, chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	a.cartMutated(w, r)
}

// cartMutated answers htmx with an event and no body, and plain forms with a
// redirect to the submitted return path or the cart page.
func (a *app) cartMutated(w http.ResponseWriter, r *http.Request) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Trigger", cartUpdatedEvent)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	target := localRedirect(r, r.PostFormValue("redirect"), a.countryPath(r, "/cart"))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func parseQuantity(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
