package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX     ctxKey = "is_htmx"
	ctxKeyCurrentURL ctxKey = "hx_current_url"
	ctxKeySession    ctxKey = "session"
	ctxKeyCountry    ctxKey = "country_code"
	ctxKeyLocaleFB   ctxKey = "locale_fallback"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithCurrentPath stores the path of the page that issued an htmx request.
func WithCurrentPath(ctx context.Context, p string) context.Context {
	return context.WithValue(ctx, ctxKeyCurrentURL, p)
}

// CurrentPath returns the path of the page the visitor is looking at. For
// htmx requests that is the HX-Current-URL path, not the fragment URL.
func CurrentPath(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCurrentURL).(string)
	return v
}

// WithCountry stores the storefront country code.
func WithCountry(ctx context.Context, cc string) context.Context {
	return context.WithValue(ctx, ctxKeyCountry, cc)
}

// CountryCode returns the lower-case country code of the request, or "".
func CountryCode(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCountry).(string)
	return v
}
