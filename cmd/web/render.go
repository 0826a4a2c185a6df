package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"macollections.com/storefront/internal/cartdropdown"
	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/handlers"
	"macollections.com/storefront/internal/httpx"
	"macollections.com/storefront/internal/i18n"
	mw "macollections.com/storefront/internal/middleware"
	"macollections.com/storefront/internal/money"
	"macollections.com/storefront/internal/nav"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seo"
)

const pagesDir = "pages"

// templateSet holds the shared layout, partials and fragments plus one clone
// per page, each defining its own "content" block.
type templateSet struct {
	dir   string
	dev   bool
	funcs template.FuncMap
	root  *template.Template
	pages map[string]*template.Template
}

func newTemplateSet(dir string, dev bool, bundle *i18n.Bundle) (*templateSet, error) {
	ts := &templateSet{dir: dir, dev: dev, funcs: templateFuncs(bundle)}
	root, pages, err := ts.parse()
	if err != nil {
		return nil, err
	}
	ts.root, ts.pages = root, pages
	return ts, nil
}

// load returns the parsed templates. In dev mode templates are reparsed on each request.
func (ts *templateSet) load() (*template.Template, map[string]*template.Template, error) {
	if ts.dev {
		return ts.parse()
	}
	return ts.root, ts.pages, nil
}

func (ts *templateSet) parse() (*template.Template, map[string]*template.Template, error) {
	// Recursively discover all .tmpl files. ParseGlob doesn't support **.
	var shared, pageFiles []string
	err := filepath.WalkDir(ts.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) == pagesDir {
			pageFiles = append(pageFiles, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(shared) == 0 || len(pageFiles) == 0 {
		return nil, nil, fmt.Errorf("no templates found under %s", ts.dir)
	}

	root, err := template.New("_root").Funcs(ts.funcs).ParseFiles(shared...)
	if err != nil {
		return nil, nil, err
	}
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := root.Clone()
		if err != nil {
			return nil, nil, err
		}
		if _, err := clone.ParseFiles(file); err != nil {
			return nil, nil, err
		}
		pages[strings.TrimSuffix(filepath.Base(file), ".tmpl")] = clone
	}
	return root, pages, nil
}

func templateFuncs(bundle *i18n.Bundle) template.FuncMap {
	return template.FuncMap{
		"t": func(lang, key string) string { return bundle.T(lang, key) },
		"tf": func(lang, key string, args ...any) string {
			return bundle.Tf(lang, key, args...)
		},
		// label renders a nav item or crumb: its translation key when set, else its literal label.
		"label": func(lang, key, literal string) string {
			if key == "" {
				return literal
			}
			return bundle.T(lang, key)
		},
		"add":  func(a, b int) int { return a + b },
		"sub":  func(a, b int) int { return a - b },
		"ms":   func(d time.Duration) int64 { return d.Milliseconds() },
		"now":  time.Now,
		"year": func() int { return time.Now().Year() },
		"dict": func(kv ...any) (map[string]any, error) {
			if len(kv)%2 != 0 {
				return nil, fmt.Errorf("dict: odd number of arguments")
			}
			out := make(map[string]any, len(kv)/2)
			for i := 0; i < len(kv); i += 2 {
				key, ok := kv[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
				}
				out[key] = kv[i+1]
			}
			return out, nil
		},
		"prefixed": func(cc, href string) string {
			if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
				return href
			}
			return "/" + cc + "/" + strings.TrimPrefix(href, "/")
		},
	}
}

// renderPage executes the page's "base" layout into a buffer so a template
// failure never leaves a half-written response.
func (a *app) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data handlers.PageData) {
	_, pages, err := a.templates.load()
	if err != nil {
		a.templateFailure(w, r, err)
		return
	}
	t, ok := pages[name]
	if !ok {
		a.templateFailure(w, r, fmt.Errorf("unknown page template %q", name))
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		a.templateFailure(w, r, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// renderFragment executes a named shared template, used for htmx swaps.
func (a *app) renderFragment(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	root, _, err := a.templates.load()
	if err != nil {
		a.templateFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := root.ExecuteTemplate(&buf, name, data); err != nil {
		a.templateFailure(w, r, err)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (a *app) templateFailure(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).Error("template render failed", zap.Error(err))
	e := httpx.Internal(r.Context())
	http.Error(w, e.Message, e.Status)
}

// fail classifies a page-building error and renders the matching response.
func (a *app) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := httpx.Classify(r.Context(), err)
	logger := observability.FromContext(r.Context())
	switch {
	case e.Empty:
		logger.Info("region not resolved", zap.String("country_code", mw.CountryCode(r.Context())))
	case e.Status >= http.StatusInternalServerError:
		logger.Error("page build failed", zap.Error(err), zap.String("code", e.Code))
	default:
		logger.Warn("page build failed", zap.Error(err), zap.String("code", e.Code))
	}
	a.renderError(w, r, e)
}

// fragmentData is passed to htmx fragments.
type fragmentData struct {
	Lang        string
	CountryCode string
	CSRFToken   string
	Cart        cartdropdown.Panel
	Error       *httpx.Error
}

// renderError renders the error page, or the layout alone when the error
// only means the region could not be resolved.
func (a *app) renderError(w http.ResponseWriter, r *http.Request, e httpx.Error) {
	lang := mw.Lang(r)
	if mw.IsHTMX(r.Context()) && !e.Empty {
		a.renderFragment(w, r, e.Status, "error_fragment", fragmentData{Lang: lang, Error: &e})
		return
	}
	page := a.shellPage(r)
	if e.Empty {
		page.Empty = true
	} else {
		page.Error = &e
		page.SEO.Title = seo.PageTitle(a.bundle.T(lang, "error.title"))
	}
	a.renderPage(w, r, e.Status, "error", page)
}

// shellPage is the layout data built without backend calls.
func (a *app) shellPage(r *http.Request) handlers.PageData {
	cc := mw.CountryCode(r.Context())
	if cc == "" {
		cc = a.cfg.Storefront.DefaultRegion
	}
	f := money.NewFormatter(mw.Lang(r))
	return handlers.PageData{
		Lang:        mw.Lang(r),
		CountryCode: cc,
		Path:        r.URL.Path,
		CSRFToken:   mw.CSRFToken(r),
		Nav:         nav.Build(cc, r.URL.Path, nil, a.showcase.HiddenMarker),
		Breadcrumbs: nav.Breadcrumbs(cc, r.URL.Path),
		Cart:        cartdropdown.BuildPanel(nil, false, f),
		SEO:         seo.Meta{Title: seo.SiteName},
	}
}

func notFoundError(r *http.Request) httpx.Error {
	return httpx.Classify(r.Context(), commerce.ErrNotFound)
}
