package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/cardctl/config"
	"github.com/s0up4200/cardctl/filter"
	"github.com/s0up4200/cardctl/metrics"
	"github.com/s0up4200/cardctl/platform"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.Nop()
	client  *platform.Platform
	presets *filter.Manager

	// stops the background prober
	stopProbe context.CancelFunc

	// Command flags
	sessionToken string
	outputJSON   bool
	waitFor      time.Duration
	metricsFile  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cardctl",
	Short: "Manage cards, transactions and statements on the card platform",
	Long: `cardctl is a command line client for the card issuing platform. It signs
users in with phone or email verification, lists and manages cards, pages
through transactions with filter expressions and downloads statements.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionToken, "session", "", "session token, overrides platform.session_token")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print records as JSON")
	rootCmd.PersistentFlags().DurationVar(&waitFor, "wait", 2*time.Minute, "how long a command may wait, including for queued requests")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write network metrics in text format to this file on exit")
}

// initializeApp loads the configuration and builds the platform client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	opts := cfg.PlatformOptions()
	if cmd.Flags().Changed("session") {
		opts.SessionToken = sessionToken
	}
	opts.Registerer = metrics.Registry

	client, err = platform.New(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to create platform client: %w", err)
	}

	client.OnSessionExpired(func() {
		logger.Warn().Msg("Session expired, sign in again with 'cardctl verify'")
	})
	client.OnDeprecated(func() {
		logger.Error().Msg("This cardctl version is no longer accepted, run 'cardctl update'")
	})

	presets = filter.NewManager()
	if err := presets.RegisterFilters(cfg.Filter.Presets); err != nil {
		return err
	}

	var probeCtx context.Context
	probeCtx, stopProbe = context.WithCancel(context.Background())
	go func() {
		if err := client.Run(probeCtx); err != nil && probeCtx.Err() == nil {
			logger.Warn().Err(err).Msg("Reachability prober stopped")
		}
	}()

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if stopProbe != nil {
		stopProbe()
	}
	if presets != nil {
		if err := presets.Close(context.Background()); err != nil {
			logger.Debug().Err(err).Msg("Failed to stop filter workers")
		}
	}
	if client != nil {
		client.Close()
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, metrics.Registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
		logger.Debug().Str("path", metricsFile).Msg("Wrote metrics")
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	fd := os.Stderr.Fd()
	terminal := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// commandContext bounds a command by the --wait flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if waitFor <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, waitFor)
}

// printJSON writes v to stdout when --json is set and reports whether it did
func printJSON(v any) (bool, error) {
	if !outputJSON {
		return false, nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

// skipInit replaces initializeApp for commands that need no platform
func skipInit(cmd *cobra.Command, args []string) error {
	return nil
}
