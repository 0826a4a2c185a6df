package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretManagerResolver resolves sm://projects/<p>/secrets/<s>[/versions/<v>]
// references with Google Secret Manager. The client is dialled on first use so
// deployments without references never need credentials.
type SecretManagerResolver struct {
	once   sync.Once
	client *secretmanager.Client
	err    error
}

// NewSecretManagerResolver returns a lazily connected resolver.
func NewSecretManagerResolver() *SecretManagerResolver {
	return &SecretManagerResolver{}
}

// ResolveSecret implements SecretResolver.
func (r *SecretManagerResolver) ResolveSecret(ctx context.Context, ref string) (string, error) {
	name, err := SecretVersionName(ref)
	if err != nil {
		return "", err
	}
	r.once.Do(func() {
		r.client, r.err = secretmanager.NewClient(ctx)
	})
	if r.err != nil {
		return "", fmt.Errorf("secret manager client: %w", r.err)
	}
	resp, err := r.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", err
	}
	return string(resp.GetPayload().GetData()), nil
}

// Close releases the client when one was created.
func (r *SecretManagerResolver) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// SecretVersionName converts an sm:// reference into a Secret Manager version
// resource name, defaulting to the latest version.
func SecretVersionName(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if !strings.HasPrefix(trimmed, "sm://") {
		return "", fmt.Errorf("not a secret reference: %q", ref)
	}
	name := strings.Trim(strings.TrimPrefix(trimmed, "sm://"), "/")
	parts := strings.Split(name, "/")
	switch {
	case len(parts) == 4 && parts[0] == "projects" && parts[2] == "secrets" && parts[1] != "" && parts[3] != "":
		return name + "/versions/latest", nil
	case len(parts) == 6 && parts[0] == "projects" && parts[2] == "secrets" && parts[4] == "versions" && parts[1] != "" && parts[3] != "" && parts[5] != "":
		return name, nil
	default:
		return "", fmt.Errorf("malformed secret reference: %q", ref)
	}
}
