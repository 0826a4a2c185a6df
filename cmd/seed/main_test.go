package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/seed"
)

func execute(t *testing.T, apply applyFunc, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(zap.NewNop(), &out, apply)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func failApply(t *testing.T) applyFunc {
	return func(context.Context, *zap.Logger, seed.Plan) (seed.Result, error) {
		t.Fatal("backend must not be called")
		return seed.Result{}, nil
	}
}

func TestValidateDemoPlan(t *testing.T) {
	t.Parallel()

	out, err := execute(t, failApply(t), "validate")
	require.NoError(t, err)
	require.Contains(t, out, "plan ok")
}

func TestValidateRejectsBrokenPlan(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sales_channel: x\n"), 0o600))
	_, err := execute(t, failApply(t), "validate", "--plan", path)
	require.ErrorIs(t, err, seed.ErrInvalidPlan)
}

func TestRunDryRun(t *testing.T) {
	t.Parallel()

	out, err := execute(t, failApply(t), "run", "--dry-run")
	require.NoError(t, err)
	require.Contains(t, out, "store: M&A Collections")
	require.Contains(t, out, "product: Robe Casual Femme")
}

func TestRunAppliesPlan(t *testing.T) {
	t.Parallel()

	var applied seed.Plan
	out, err := execute(t, func(_ context.Context, _ *zap.Logger, plan seed.Plan) (seed.Result, error) {
		applied = plan
		return seed.Result{PublishableKey: "pk_123"}, nil
	}, "run")
	require.NoError(t, err)
	require.Len(t, applied.Products, 6)
	require.Contains(t, out, "publishable key: pk_123")
}
