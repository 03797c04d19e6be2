// Package cmd defines and implements the CLI commands for the tickerscout
// executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tickerscout/tickerscout/internal/app"
	"github.com/tickerscout/tickerscout/internal/config"
	"github.com/tickerscout/tickerscout/internal/logging"
)

var (
	cfgFile string
	devMode bool
)

// appKeyType is the key for storing the App in the command context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickerscout",
		Short: "Track stock-ticker mentions across a subreddit's top posts.",
		Long: `tickerscout walks a subreddit's top posts, their top comments, and each
comment's replies, extracts candidate stock tickers from the text, validates
them against the SEC registry, and stores every validated mention with its
provenance.`,

		// Runs after flags are parsed and before the subcommand: load config,
		// build the service container, and hand it down via the context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Credentials (DSN, SEC contact email) usually live in .env.
			_ = godotenv.Load()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyFlagOverrides(cmd, &cfg)

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (YAML)")
	cmd.PersistentFlags().BoolVar(&devMode, "dev", false, "force development logging")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newTickersCmd())

	return cmd
}

// applyFlagOverrides lets command-line flags win over file/env config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dev") {
		cfg.Logging.Development = devMode
	}
	if flags.Changed("posts") {
		cfg.Scan.Posts, _ = flags.GetInt("posts")
	}
	if flags.Changed("comments") {
		cfg.Scan.CommentsPerPost, _ = flags.GetInt("comments")
	}
	if flags.Changed("replies") {
		cfg.Scan.RepliesPerComment, _ = flags.GetInt("replies")
	}
	if flags.Changed("concurrency") {
		cfg.Scan.Concurrency, _ = flags.GetInt("concurrency")
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
