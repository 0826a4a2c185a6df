package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/checkout"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/handlers"
	"macollections.com/storefront/internal/httpx"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seo"
)

// CheckoutHandler renders the checkout form prefilled from the cart. An empty
// cart sends the visitor back to the cart page.
func (a *app) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	cc := mw.CountryCode(r.Context())
	cart := a.loadCart(r.Context(), mw.GetSession(r))
	if cart == nil || len(cart.Items) == 0 {
		http.Redirect(w, r, a.countryPath(r, "/cart"), http.StatusFound)
		return
	}
	a.renderCheckout(w, r, http.StatusOK, cart, checkout.FormFromCart(cart, cc), nil, "")
}

// PlaceOrderHandler submits the checkout and redirects to the confirmation page.
func (a *app) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		a.fail(w, r, httpx.ErrBadRequest)
		return
	}
	sess := mw.GetSession(r)
	cart := a.loadCart(ctx, sess)
	form := checkout.ParseForm(r.PostForm, mw.CountryCode(ctx))

	order, err := a.checkout.Place(ctx, cart, form)
	var formErr *checkout.FormError
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrEmptyCart):
		http.Redirect(w, r, a.countryPath(r, "/cart"), http.StatusSeeOther)
		return
	case errors.As(err, &formErr):
		a.renderCheckout(w, r, http.StatusUnprocessableEntity, cart, form, formErr.Fields, "")
		return
	case errors.Is(err, context.Canceled):
		a.fail(w, r, err)
		return
	default:
		status := httpx.StatusFor(err)
		observability.FromContext(ctx).Warn("checkout failed", zap.Error(err), zap.String("cart_id", cart.ID), zap.Int("status", status))
		a.renderCheckout(w, r, status, cart, form, nil, "checkout.error.failed")
		return
	}

	sess.SetCart("")
	http.Redirect(w, r, a.countryPath(r, "/order/"+order.ID+"/confirmed"), http.StatusSeeOther)
}

func (a *app) renderCheckout(w http.ResponseWriter, r *http.Request, status int, cart *commerce.Cart, form checkout.Form, errs checkout.FieldErrors, failure string) {
	options, err := a.store.ListShippingOptions(r.Context(), cart.ID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	data := handlers.BuildCheckout(cart, options, form, errs, a.formatter(r))
	data.FailureKey = failure

	page := a.newPage(r, nil)
	page.SEO.Title = seo.PageTitle(a.t(r, "checkout.title"))
	page.Content = data
	a.renderPage(w, r, status, "checkout", page)
}

// OrderConfirmedHandler renders a placed order.
func (a *app) OrderConfirmedHandler(w http.ResponseWriter, r *http.Request) {
	order, err := a.store.RetrieveOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	page := a.newPage(r, nil)
	page.SEO.Title = seo.PageTitle(a.t(r, "order.title"))
	page.Content = handlers.BuildOrder(order, a.formatter(r))
	a.renderPage(w, r, http.StatusOK, "order", page)
}
