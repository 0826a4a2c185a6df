package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"macollections.com/storefront/internal/commerce"
	"macollections.com/storefront/internal/config"
	"macollections.com/storefront/internal/observability"
	"macollections.com/storefront/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	cmd := newRootCmd(baseLogger.Named("seed"), os.Stdout, runPlan)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// applyFunc executes a validated plan against a backend.
type applyFunc func(ctx context.Context, logger *zap.Logger, plan seed.Plan) (seed.Result, error)

func newRootCmd(logger *zap.Logger, out io.Writer, apply applyFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Provision a commerce backend with the M&A Collections demo store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	var planPath string
	var dryRun bool
	run := &cobra.Command{
		Use:   "run",
		Short: "Create regions, fulfillment, categories, products and stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := seed.LoadPlan(planPath)
			if err != nil {
				logger.Error("failed to load plan", zap.Error(err))
				return err
			}
			if dryRun {
				return seed.Describe(cmd.OutOrStdout(), plan)
			}
			res, err := apply(cmd.Context(), logger, plan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "publishable key: %s\n", res.PublishableKey)
			return nil
		},
	}
	run.Flags().StringVar(&planPath, "plan", "", "seed plan YAML (defaults to the built-in demo plan)")
	run.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be created without calling the backend")

	var validatePath string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check a seed plan without contacting the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := seed.LoadPlan(validatePath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "plan ok")
			return nil
		},
	}
	validate.Flags().StringVar(&validatePath, "plan", "", "seed plan YAML (defaults to the built-in demo plan)")

	root.AddCommand(run, validate)
	return root
}

func runPlan(ctx context.Context, logger *zap.Logger, plan seed.Plan) (seed.Result, error) {
	resolver := config.NewSecretManagerResolver()
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("secret manager close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithTarget(config.TargetSeed), config.WithSecretResolver(resolver))
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return seed.Result{}, err
	}
	admin := commerce.NewAdminClient(cfg.Backend.URL, cfg.Backend.AdminToken, commerce.WithTimeout(cfg.Backend.Timeout))
	return seed.NewRunner(admin, logger).Run(ctx, plan)
}
