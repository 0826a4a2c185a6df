package main

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/cache"
	"macollections.com/storefront/internal/carousel"
	"macollections.com/storefront/internal/checkout"
	"macollections.com/storefront/internal/clock"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/config"
	"macollections.com/storefront/internal/i18n"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/showcase"
)

var supportedLangs = []string{"en", "fr"}

// app holds the storefront's long-lived dependencies.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *commerce.Client
	checkout  *checkout.Service
	bundle    *i18n.Bundle
	sessions  *mw.SessionStore
	templates *templateSet
	slides    []carousel.Slide
	showcase  showcase.Config
	sched     clock.Scheduler
}

func newApp(cfg config.Config, logger *zap.Logger, opts ...commerce.Option) (*app, error) {
	bundle, err := i18n.Load(cfg.Storefront.LocalesDir, supportedLangs[0], supportedLangs)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}

	sessions, err := mw.NewSessionStore([]byte(cfg.Session.HashKey), []byte(cfg.Session.BlockKey), cfg.Session.CookieSecure)
	if errors.Is(err, mw.ErrEphemeralKey) {
		logger.Warn("session hash key not configured; sessions reset on restart")
	} else if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	slides, err := carousel.LoadSlides(filepath.Join(cfg.Storefront.ContentDir, "hero.yaml"))
	if err != nil {
		return nil, err
	}

	templates, err := newTemplateSet(cfg.Storefront.TemplatesDir, cfg.Storefront.Dev, bundle)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	clientOpts := []commerce.Option{
		commerce.WithPublishableKey(cfg.Backend.PublishableKey),
		commerce.WithCache(cache.New(cfg.Cache.Size, cfg.Cache.TTL)),
		commerce.WithTimeout(cfg.Backend.Timeout),
		commerce.WithDevMode(cfg.Storefront.Dev),
	}
	store := commerce.NewClient(cfg.Backend.URL, append(clientOpts, opts...)...)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		checkout:  checkout.NewService(store, checkout.WithLogger(logger.Named("checkout"))),
		bundle:    bundle,
		sessions:  sessions,
		templates: templates,
		slides:    slides,
		showcase:  showcase.DefaultConfig(),
		sched:     clock.Real(),
	}, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(a.logger))
	r.Use(observability.Recoverer(a.renderError))
	r.Use(mw.HTMX)
	r.Use(a.sessions.Session)
	r.Use(mw.Locale(a.bundle))
	r.Use(mw.CSRF)
	r.Use(mw.VaryLocale)
	r.Use(chimw.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", mw.Assets(filepath.Join(a.cfg.Storefront.PublicDir, "assets"), "/assets", a.cfg.Storefront.Dev))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/"+a.cfg.Storefront.DefaultRegion, http.StatusFound)
	})

	r.Route("/{cc}", func(r chi.Router) {
		r.Use(mw.Country)
		r.Get("/", a.HomeHandler)
		r.Get("/store", a.StoreHandler)
		r.Get("/categories/*", a.CategoryHandler)
		r.Get("/collections/{handle}", a.CollectionHandler)
		r.Get("/products/{handle}", a.ProductHandler)

		r.Get("/cart", a.CartHandler)
		r.Get("/cart/dropdown", a.CartDropdownFrag)
		r.Post("/cart/line-items", a.AddLineItemHandler)
		r.Post("/cart/line-items/{id}", a.UpdateLineItemHandler)
		r.Post("/cart/line-items/{id}/delete", a.DeleteLineItemHandler)

		r.Get("/checkout", a.CheckoutHandler)
		r.Post("/checkout", a.PlaceOrderHandler)
		r.Get("/order/{id}/confirmed", a.OrderConfirmedHandler)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.renderError(w, r, notFoundError(r))
	})
	return r
}
