package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix             = "STOREFRONT_"
	defaultEnvFile        = ".env"
	defaultPort           = "8000"
	defaultRegion         = "tn"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultBackendTimeout = 8 * time.Second
	defaultCacheTTL       = 5 * time.Minute
	defaultCacheSize      = 512
	defaultTemplatesDir   = "templates"
	defaultPublicDir      = "public"
	defaultLocalesDir     = "locales"
	defaultContentDir     = "content"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Storefront StorefrontConfig
	Session    SessionConfig
	Cache      CacheConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig locates and authenticates against the commerce backend.
type BackendConfig struct {
	URL            string
	PublishableKey string
	AdminToken     string
	Timeout        time.Duration
}

// StorefrontConfig holds presentation settings.
type StorefrontConfig struct {
	DefaultRegion string
	Dev           bool
	TemplatesDir  string
	PublicDir     string
	LocalesDir    string
	ContentDir    string
}

// SessionConfig holds the session cookie keys.
type SessionConfig struct {
	HashKey      string
	BlockKey     string
	CookieSecure bool
}

// CacheConfig sizes the backend response cache.
type CacheConfig struct {
	TTL  time.Duration
	Size int
}

// Target selects which settings are mandatory.
type Target int

const (
	// TargetWeb is the storefront server.
	TargetWeb Target = iota
	// TargetSeed is the demo data seeder.
	TargetSeed
)

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Key string
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for %s (ref %q): %v", e.Key, e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
	target       Target
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// WithTarget selects the validation rules. Defaults to TargetWeb.
func WithTarget(t Target) Option {
	return func(o *loaderOptions) {
		o.target = t
	}
}

// Load assembles configuration from defaults, .env overrides, environment
// variables (dotenv < OS env < explicit map) and secret references.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
		secret: SecretResolverFunc(func(ctx context.Context, ref string) (string, error) {
			return "", errSecretResolverNotConfigured
		}),
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}
	prefixed := func(key string) (string, bool) { return lookup(envPrefix + key) }

	port := stringWithDefault(prefixed, "PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         port,
			ReadTimeout:  durationWithDefault(prefixed, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(prefixed, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(prefixed, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Backend: BackendConfig{
			URL:            strings.TrimRight(stringWithDefault(prefixed, "BACKEND_URL", ""), "/"),
			PublishableKey: stringWithDefault(prefixed, "PUBLISHABLE_KEY", ""),
			AdminToken:     stringWithDefault(prefixed, "ADMIN_TOKEN", ""),
			Timeout:        durationWithDefault(prefixed, "BACKEND_TIMEOUT", defaultBackendTimeout),
		},
		Storefront: StorefrontConfig{
			DefaultRegion: strings.ToLower(stringWithDefault(prefixed, "DEFAULT_REGION", defaultRegion)),
			Dev:           boolWithDefault(prefixed, "DEV", false),
			TemplatesDir:  stringWithDefault(prefixed, "TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:     stringWithDefault(prefixed, "PUBLIC_DIR", defaultPublicDir),
			LocalesDir:    stringWithDefault(prefixed, "LOCALES_DIR", defaultLocalesDir),
			ContentDir:    stringWithDefault(prefixed, "CONTENT_DIR", defaultContentDir),
		},
		Session: SessionConfig{
			HashKey:      stringWithDefault(prefixed, "SESSION_HASH_KEY", ""),
			BlockKey:     stringWithDefault(prefixed, "SESSION_BLOCK_KEY", ""),
			CookieSecure: boolWithDefault(prefixed, "COOKIE_SECURE", false),
		},
		Cache: CacheConfig{
			TTL:  durationWithDefault(prefixed, "CACHE_TTL", defaultCacheTTL),
			Size: intWithDefault(prefixed, "CACHE_SIZE", defaultCacheSize),
		},
	}

	secrets := []struct {
		key   string
		value *string
	}{
		{"PUBLISHABLE_KEY", &cfg.Backend.PublishableKey},
		{"ADMIN_TOKEN", &cfg.Backend.AdminToken},
		{"SESSION_HASH_KEY", &cfg.Session.HashKey},
		{"SESSION_BLOCK_KEY", &cfg.Session.BlockKey},
	}
	for _, s := range secrets {
		if !isSecretReference(*s.value) {
			continue
		}
		resolved, err := options.secret.ResolveSecret(ctx, *s.value)
		if err != nil {
			return Config{}, &SecretError{Key: envPrefix + s.key, Ref: *s.value, Err: err}
		}
		*s.value = strings.TrimSpace(resolved)
	}

	if err := validateConfig(cfg, options.target); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, target Target) error {
	var missing []string

	if cfg.Backend.URL == "" {
		missing = append(missing, "Backend.URL")
	}
	switch target {
	case TargetSeed:
		if cfg.Backend.AdminToken == "" {
			missing = append(missing, "Backend.AdminToken")
		}
	default:
		if cfg.Server.Port == "" {
			missing = append(missing, "Server.Port")
		}
		if cfg.Backend.PublishableKey == "" {
			missing = append(missing, "Backend.PublishableKey")
		}
		if cfg.Storefront.DefaultRegion == "" {
			missing = append(missing, "Storefront.DefaultRegion")
		}
		if cfg.Cache.Size <= 0 {
			missing = append(missing, "Cache.Size")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isSecretReference(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "sm://")
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
