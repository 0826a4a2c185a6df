package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"macollections.com/storefront/internal/observability"
)

type stubLocales struct{}

func (stubLocales) Fallback() string { return "en" }
func (stubLocales) IsSupported(l string) bool {
	return l == "en" || l == "fr"
}
func (stubLocales) Resolve(accept string) string {
	if strings.HasPrefix(accept, "fr") {
		return "fr"
	}
	return "en"
}

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := NewSessionStore([]byte("0123456789abcdef0123456789abcdef"), nil, false)
	require.NoError(t, err)
	return store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	h := store.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		if r.URL.Query().Get("set") != "" {
			s.SetCart("cart_1")
			s.SetCartCount(3)
		}
		_, _ = w.Write([]byte(s.CartID))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?set=1", nil))
	cookie := sessionCookie(t, rec)
	require.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "cart_1", rec.Body.String())
	require.Empty(t, rec.Result().Cookies(), "unchanged session is not rewritten")
}

func TestSessionLogsOversizedCookie(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	h := store.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := GetSession(r)
		s.Locale = strings.Repeat("x", 5000)
		s.MarkDirty()
		w.WriteHeader(http.StatusOK)
	}))

	core, logs := observer.New(zapcore.ErrorLevel)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(observability.WithLogger(req.Context(), zap.New(core)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	entries := logs.FilterMessage("session cookie not written").All()
	require.Len(t, entries, 1)
	require.NotEmpty(t, entries[0].ContextMap()["session_id"])
}

func TestSessionRejectsTamperedCookie(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	h := store.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetSession(r).CartID))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Empty(t, rec.Body.String())
	require.NotNil(t, sessionCookie(t, rec))
}

func TestSetCartResetsCount(t *testing.T) {
	t.Parallel()

	s := &SessionData{CartID: "a", CartCount: 4}
	s.SetCart("a")
	require.Equal(t, 4, s.CartCount)
	s.SetCart("b")
	require.Zero(t, s.CartCount)
	require.True(t, s.dirty)
}

func TestEphemeralKeyWarning(t *testing.T) {
	t.Parallel()

	store, err := NewSessionStore(nil, nil, true)
	require.ErrorIs(t, err, ErrEphemeralKey)
	require.NotNil(t, store)
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	var token string
	h := store.Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = CSRFToken(r)
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotEmpty(t, token)
	cookie := sessionCookie(t, rec)

	post := func(mutate func(*http.Request)) int {
		form := url.Values{}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookie)
		mutate(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusForbidden, post(func(*http.Request) {}))
	require.Equal(t, http.StatusForbidden, post(func(r *http.Request) { r.Header.Set(csrfHeader, "nope") }))
	require.Equal(t, http.StatusNoContent, post(func(r *http.Request) { r.Header.Set(csrfHeader, token) }))
	require.Equal(t, http.StatusNoContent, post(func(r *http.Request) {
		r.Body = io.NopCloser(strings.NewReader(CSRFFormField + "=" + token))
	}))
}

func TestLocaleResolution(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	h := store.Session(Locale(stubLocales{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Lang(r)))
	})))

	cases := []struct {
		name   string
		target string
		accept string
		cookie string
		want   string
	}{
		{"accept language", "/", "fr-TN,fr;q=0.9", "", "fr"},
		{"default", "/", "", "", "en"},
		{"query wins", "/?hl=fr", "en", "", "fr"},
		{"unsupported query ignored", "/?hl=de", "", "", "en"},
		{"cookie", "/", "en", "fr", "fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.accept != "" {
				req.Header.Set("Accept-Language", tc.accept)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "hl", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Body.String())
			require.Equal(t, tc.want, rec.Header().Get("Content-Language"))
		})
	}
}

func TestHTMXCurrentPath(t *testing.T) {
	t.Parallel()

	var gotHTMX bool
	var gotPath string
	h := HTMX(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHTMX = IsHTMX(r.Context())
		gotPath = CurrentPath(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/tn/cart/dropdown", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "https://shop.test/tn/cart?x=1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.True(t, gotHTMX)
	require.Equal(t, "/tn/cart", gotPath)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tn/store", nil))
	require.False(t, gotHTMX)
	require.Equal(t, "/tn/store", gotPath)
}

func TestCountry(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.With(Country).Get("/{cc}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(CountryCode(r.Context())))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/TN", nil))
	require.Equal(t, "tn", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tun", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o600))
	h := Assets(dir, "/assets", false)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())
	require.Contains(t, rec.Header().Get("Cache-Control"), "max-age=604800")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/assets/app.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssetsDevMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("1"), 0o600))
	h := Assets(dir, "/assets", true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Empty(t, rec.Header().Get("ETag"))
}
