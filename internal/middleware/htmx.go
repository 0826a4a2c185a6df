package middleware

import (
	"net/http"
	"net/url"
)

// HTMX marks requests coming from htmx so handlers/middlewares can adapt responses.
// It also records the page path the request was issued from.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		current := r.URL.Path
		if is {
			if u, err := url.Parse(r.Header.Get("HX-Current-URL")); err == nil && u.Path != "" {
				current = u.Path
			}
		}
		ctx = WithCurrentPath(ctx, current)
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
