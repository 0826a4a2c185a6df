package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Country reads the {cc} route parameter, lower-cases it and stores it in
// the request context. Anything but two ASCII letters is a 404.
func Country(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := strings.ToLower(chi.URLParam(r, "cc"))
		if !validCountry(cc) {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCountry(r.Context(), cc)))
	})
}

func validCountry(cc string) bool {
	if len(cc) != 2 {
		return false
	}
	for i := 0; i < len(cc); i++ {
		if cc[i] < 'a' || cc[i] > 'z' {
			return false
		}
	}
	return true
}
