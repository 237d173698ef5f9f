package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"affiliateScope/internal/config"
	"affiliateScope/internal/render"
	"affiliateScope/internal/storage"
)

func main() {
	root := &cobra.Command{
		Use:          "affiliate",
		Short:        "THORChain affiliate fee stats via Flipside",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run [wallet]",
		Short: "Fetch affiliate stats for one wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runOnce,
	}

	runCmd.Flags().String("wallet", "", "wallet address (sender of the swaps)")
	runCmd.Flags().String("out", "./data/result.html", "output region HTML file")
	addQueryFlags(runCmd)

	root.AddCommand(runCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the affiliate stats dashboard",
		RunE:  runServe,
	}

	serveCmd.Flags().String("addr", ":8080", "listen address")
	addQueryFlags(serveCmd)

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", "", "query service JSON-RPC endpoint")
	cmd.Flags().String("api-key", "", "query service API key")
	cmd.Flags().Duration("http-timeout", 30*time.Second, "per-request HTTP timeout")
	cmd.Flags().Float64("rate-limit", 0, "max service calls per second, 0 means unlimited")
	cmd.Flags().Duration("poll-interval", time.Second, "delay between status checks")
	cmd.Flags().Int("max-attempts", 300, "maximum status checks, 0 means unbounded")
	cmd.Flags().Duration("poll-timeout", 10*time.Minute, "deadline for one invocation, 0 means none")
	cmd.Flags().Bool("ignore-failed-state", false, "treat failed or canceled runs as pending")
	cmd.Flags().Int("result-ttl-hours", 1, "result cache TTL requested from the service")
	cmd.Flags().Int("max-age-minutes", 0, "maximum age of a cached result to reuse")
	cmd.Flags().String("data-source", "snowflake-default", "query data source")
	cmd.Flags().String("data-provider", "flipside", "query data provider")
	cmd.Flags().String("tags", "source=thorchain-analytics,env=production", "query tags (comma-separated key=value)")
	cmd.Flags().Int("page-size", 1000, "result page size")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	wallet, _ := cmd.Flags().GetString("wallet")
	if len(args) == 1 {
		wallet = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var region storage.Region
	if cfg.Out != "" {
		region = storage.NewFileRegion(cfg.Out)
	}

	p, closeFn, err := newPipeline(ctx, cfg, region, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Info("run start",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("api_key", cfg.RedactedKey()),
		zap.String("wallet", wallet),
		zap.String("out", cfg.Out),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Int("max_attempts", cfg.MaxAttempts),
	)

	view, err := p.Run(ctx, wallet)
	if err != nil {
		if view.Kind != "" {
			_ = render.WriteText(cmd.ErrOrStderr(), view)
		}
		return fmt.Errorf("fetch stats: %w", err)
	}
	return render.WriteText(cmd.OutOrStdout(), view)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
