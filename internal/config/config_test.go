package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"STOREFRONT_BACKEND_URL":     "http://localhost:9000/",
		"STOREFRONT_PUBLISHABLE_KEY": "pk_test",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(baseEnv()))
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Server.Port)
	require.Equal(t, "http://localhost:9000", cfg.Backend.URL)
	require.Equal(t, "tn", cfg.Storefront.DefaultRegion)
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, 512, cfg.Cache.Size)
	require.Equal(t, 8*time.Second, cfg.Backend.Timeout)
	require.Equal(t, "templates", cfg.Storefront.TemplatesDir)
	require.False(t, cfg.Storefront.Dev)
}

func TestLoadPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"STOREFRONT_BACKEND_URL=http://dotenv:9000\nSTOREFRONT_PUBLISHABLE_KEY=pk_dotenv\nSTOREFRONT_CACHE_TTL=30s\nPORT=7000\n# comment\nexport STOREFRONT_DEV=true\n",
	), 0o600))

	cfg, err := Load(context.Background(),
		WithoutSystemEnv(),
		WithEnvFile(envFile),
		WithEnvMap(map[string]string{"STOREFRONT_PUBLISHABLE_KEY": "pk_map"}),
	)
	require.NoError(t, err)
	require.Equal(t, "http://dotenv:9000", cfg.Backend.URL)
	require.Equal(t, "pk_map", cfg.Backend.PublishableKey)
	require.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.Equal(t, "7000", cfg.Server.Port)
	require.True(t, cfg.Storefront.Dev)
}

func TestLoadPrefixedPortWins(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["PORT"] = "7000"
	env["STOREFRONT_PORT"] = "8123"
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	require.NoError(t, err)
	require.Equal(t, "8123", cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{}))
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.ElementsMatch(t, []string{"Backend.URL", "Backend.PublishableKey"}, vErr.Fields())

	_, err = Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithTarget(TargetSeed),
		WithEnvMap(map[string]string{"STOREFRONT_BACKEND_URL": "http://b"}))
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, []string{"Backend.AdminToken"}, vErr.Fields())

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithTarget(TargetSeed),
		WithEnvMap(map[string]string{"STOREFRONT_BACKEND_URL": "http://b", "STOREFRONT_ADMIN_TOKEN": "sk_admin"}))
	require.NoError(t, err)
	require.Equal(t, "sk_admin", cfg.Backend.AdminToken)
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["STOREFRONT_PUBLISHABLE_KEY"] = "sm://projects/demo/secrets/pk"
	env["STOREFRONT_SESSION_HASH_KEY"] = "sm://projects/demo/secrets/hash/versions/3"

	var refs []string
	resolver := SecretResolverFunc(func(ctx context.Context, ref string) (string, error) {
		refs = append(refs, ref)
		return " resolved-" + filepath.Base(ref) + "\n", nil
	})
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env), WithSecretResolver(resolver))
	require.NoError(t, err)
	require.Equal(t, "resolved-pk", cfg.Backend.PublishableKey)
	require.Equal(t, "resolved-3", cfg.Session.HashKey)
	require.Len(t, refs, 2)
}

func TestLoadSecretFailure(t *testing.T) {
	t.Parallel()

	env := baseEnv()
	env["STOREFRONT_PUBLISHABLE_KEY"] = "sm://projects/demo/secrets/pk"
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(env))
	var sErr *SecretError
	require.True(t, errors.As(err, &sErr))
	require.Equal(t, "STOREFRONT_PUBLISHABLE_KEY", sErr.Key)
	require.ErrorIs(t, err, errSecretResolverNotConfigured)
}

func TestSecretVersionName(t *testing.T) {
	t.Parallel()

	name, err := SecretVersionName("sm://projects/p/secrets/s")
	require.NoError(t, err)
	require.Equal(t, "projects/p/secrets/s/versions/latest", name)

	name, err = SecretVersionName("sm://projects/p/secrets/s/versions/7")
	require.NoError(t, err)
	require.Equal(t, "projects/p/secrets/s/versions/7", name)

	_, err = SecretVersionName("sm://secrets/s")
	require.Error(t, err)
	_, err = SecretVersionName("plain")
	require.Error(t, err)
}
