// Package commerce is the typed client for the commerce backend's store and
// admin HTTP APIs.
package commerce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"macollections.com/storefront/internal/cache"
)

const (
	defaultTimeout       = 8 * time.Second
	maxResponseBytes     = 8 << 20
	publishableKeyHeader = "x-publishable-api-key"
	idempotencyHeader    = "Idempotency-Key"
	tracerName           = "macollections.com/storefront/internal/commerce"
	meterName            = tracerName
)

// Cache tags group cached responses by entity type.
const (
	TagCategories  = "categories"
	TagCollections = "collections"
	TagProducts    = "products"
	TagRegions     = "regions"
	TagCarts       = "carts"
	TagFulfillment = "fulfillment"
)

// Policy selects how a GET request interacts with the response cache.
type Policy int

const (
	// ForceCache serves a cached body when present and stores fresh ones.
	ForceCache Policy = iota
	// NoStore always hits the backend and never stores the body.
	NoStore
)

var (
	// ErrNotFound is matched by API errors carrying a 404 status and by
	// lookups that returned an empty list.
	ErrNotFound = errors.New("commerce: not found")
	// ErrRegionNotFound is returned when no region serves a country code.
	ErrRegionNotFound = errors.New("commerce: region not found")
)

// APIError is a non-2xx backend reply.
type APIError struct {
	Status  int
	Code    string
	Message string
	Path    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("commerce: %s returned %d (%s): %s", e.Path, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("commerce: %s returned %d: %s", e.Path, e.Status, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 replies.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Request describes one backend call.
type Request struct {
	// Name labels the trace span, e.g. "list_categories".
	Name   string
	Method string
	Path   string
	Query  url.Values
	Body   any
	Cache  Policy
	// Tags index a cached GET body for later invalidation.
	Tags []string
}

// Client issues requests against the backend.
type Client struct {
	baseURL        string
	publishableKey string
	authorization  string
	http           *http.Client
	cache          *cache.Store
	dev            bool
	tracer         trace.Tracer

	meter        metric.Meter
	duration     metric.Float64Histogram
	cacheLookups metric.Int64Counter
}

// Option configures a Client.
type Option func(*Client)

// WithPublishableKey sets the key sent with every store request.
func WithPublishableKey(key string) Option {
	return func(c *Client) { c.publishableKey = strings.TrimSpace(key) }
}

// WithCache enables response caching for ForceCache requests.
func WithCache(store *cache.Store) Option {
	return func(c *Client) { c.cache = store }
}

// WithHTTPClient replaces the default instrumented client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithDevMode forces NoStore on every request.
func WithDevMode(dev bool) Option {
	return func(c *Client) { c.dev = dev }
}

// WithMeter injects the OpenTelemetry meter used for request metrics. The
// global meter provider is used otherwise.
func WithMeter(m metric.Meter) Option {
	return func(c *Client) { c.meter = m }
}

// WithToken authenticates admin requests. Secret API keys ("sk_") use basic
// auth; anything else is sent as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		token = strings.TrimSpace(token)
		switch {
		case token == "":
			c.authorization = ""
		case strings.HasPrefix(token, "sk_"):
			c.authorization = "Basic " + base64.StdEncoding.EncodeToString([]byte(token+":"))
		default:
			c.authorization = "Bearer " + token
		}
	}
}

// NewClient constructs a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.meter == nil {
		c.meter = otel.GetMeterProvider().Meter(meterName)
	}
	// Instruments that fail to register stay nil and are skipped.
	if h, err := c.meter.Float64Histogram(
		"commerce.request.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of backend requests"),
	); err == nil {
		c.duration = h
	}
	if ctr, err := c.meter.Int64Counter(
		"commerce.cache.lookups",
		metric.WithDescription("Response cache lookups by outcome"),
	); err == nil {
		c.cacheLookups = ctr
	}
	return c
}

// Invalidate drops cached responses for the given tags.
func (c *Client) Invalidate(tags ...string) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.InvalidateTag(tags...)
}

// Do performs req and decodes the JSON reply into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	name := req.Name
	if name == "" {
		name = strings.ToLower(method) + " " + req.Path
	}
	cacheable := method == http.MethodGet && req.Cache == ForceCache && !c.dev && c.cache != nil
	key := cache.Key(strings.Join(req.Tags, ","), req.Path, req.Query)

	ctx, span := c.tracer.Start(ctx, "commerce."+name, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", req.Path),
	)

	if cacheable {
		body, ok := c.cache.Get(key)
		c.recordCacheLookup(ctx, name, ok)
		if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return decode(body, out)
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	start := time.Now()
	body, status, err := c.roundTrip(ctx, method, req)
	c.recordDuration(ctx, name, status, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	if cacheable {
		c.cache.Set(key, body, req.Tags...)
	}
	return decode(body, out)
}

func (c *Client) recordDuration(ctx context.Context, name string, status int, d time.Duration) {
	if c.duration == nil {
		return
	}
	c.duration.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("name", name),
		attribute.Int("status", status),
	))
}

func (c *Client) recordCacheLookup(ctx context.Context, name string, hit bool) {
	if c.cacheLookups == nil {
		return
	}
	c.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.Bool("hit", hit),
	))
}

func (c *Client) roundTrip(ctx context.Context, method string, req Request) ([]byte, int, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var payload io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("commerce: encode %s body: %w", req.Path, err)
		}
		payload = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.publishableKey != "" {
		httpReq.Header.Set(publishableKeyHeader, c.publishableKey)
	}
	if c.authorization != "" {
		httpReq.Header.Set("Authorization", c.authorization)
	}
	if method != http.MethodGet {
		httpReq.Header.Set(idempotencyHeader, ulid.Make().String())
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("commerce: %s %s: %w", method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("commerce: read %s: %w", req.Path, err)
	}
	if resp.StatusCode >= 400 {
		return nil, resp.StatusCode, parseAPIError(resp.StatusCode, req.Path, body)
	}
	return body, resp.StatusCode, nil
}

func parseAPIError(status int, path string, body []byte) error {
	apiErr := &APIError{Status: status, Path: path}
	var payload struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Type
		if apiErr.Code == "" {
			apiErr.Code = payload.Code
		}
		apiErr.Message = strings.TrimSpace(payload.Message)
	} else {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		apiErr.Message = msg
	}
	return apiErr
}

func decode(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("commerce: decode response: %w", err)
	}
	return nil
}
