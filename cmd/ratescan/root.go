package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/core/scan"
	"github.com/leofalp/ratescan/internal/config"
	"github.com/leofalp/ratescan/internal/logging"
	"github.com/leofalp/ratescan/internal/utils"
	"github.com/leofalp/ratescan/providers/export"
	"github.com/leofalp/ratescan/providers/fetch"
)

type rootOptions struct {
	configPath  string
	formats     []string
	outputDir   string
	delay       time.Duration
	timeout     time.Duration
	retries     int
	snapshotDir string
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ratescan",
		Short: "Extract lending rates and contract addresses from protocol pages",
		Long: `Fetches every configured source page in order, extracts rate records
with a cascade of table, container and percentage heuristics, and exports the
combined dataset. Interrupting the scan still exports what was gathered.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR (default from RATESCAN_LOG_LEVEL)")
	f.StringVar(&opts.logFormat, "log-format", "", "log format: compact, pretty, json (default from RATESCAN_LOG_FORMAT)")

	f = cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "config file (.yaml, .toml or .json; default from RATESCAN_CONFIG)")
	f.StringSliceVarP(&opts.formats, "format", "f", nil, "export formats: json, csv, sqlite (first is primary)")
	f.StringVarP(&opts.outputDir, "out", "o", "", "output directory")
	f.DurationVar(&opts.delay, "delay", config.DefaultDelay, "pause between sources")
	f.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "per-request timeout")
	f.IntVar(&opts.retries, "retries", config.DefaultRetries, "retries for transient fetch failures")
	f.StringVar(&opts.snapshotDir, "snapshot-dir", "", "write each fetched page as Markdown into this directory")

	cmd.AddCommand(newExtractCmd())
	return cmd
}

// newLogger builds the logger from flags, falling back to the environment.
func newLogger(cmd *cobra.Command, level, format string) (*slog.Logger, error) {
	opts := []logging.Option{logging.WithOutput(cmd.ErrOrStderr())}
	if level != "" {
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logging.WithLevel(lvl))
	}
	if format != "" {
		opts = append(opts, logging.WithFormat(logging.ParseFormat(format)))
	}
	return logging.New(opts...), nil
}

// loadConfig resolves the config file and applies explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Formats = opts.formats
	}
	if flags.Changed("out") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("delay") {
		cfg.Delay = config.Duration(opts.delay)
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(opts.timeout)
	}
	if flags.Changed("retries") {
		cfg.Retries = opts.retries
	}
	if flags.Changed("snapshot-dir") {
		cfg.SnapshotDir = opts.snapshotDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newFetcher wires the HTTP client with retry outermost, so each attempt is
// logged on its own.
func newFetcher(cfg *config.Config, logger *slog.Logger) *fetch.Client {
	var middlewares []fetch.Middleware
	if cfg.Retries > 0 {
		middlewares = append(middlewares, fetch.NewRetryMiddleware(fetch.RetryConfig{MaxRetries: cfg.Retries}))
	}
	middlewares = append(middlewares, fetch.NewLoggingMiddleware(logger, fetch.LogLevelStandard))

	return fetch.New(
		fetch.WithTimeout(cfg.Timeout.Std()),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMiddleware(middlewares...),
	)
}

func runScan(cmd *cobra.Command, opts *rootOptions) error {
	logger, err := newLogger(cmd, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	formats, err := cfg.ExportFormats()
	if err != nil {
		return err
	}

	return scanAndExport(cmd, cfg, formats, newFetcher(cfg, logger), logger)
}

func scanAndExport(cmd *cobra.Command, cfg *config.Config, formats []export.Format, fetcher scan.Fetcher, logger *slog.Logger) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scanOpts := []scan.Option{
		scan.WithDelay(cfg.Delay.Std()),
		scan.WithLogger(logger),
		scan.WithEngine(extract.New(
			extract.WithHeuristics(cfg.Heuristics),
			extract.WithLogger(logger),
		)),
	}
	if cfg.SnapshotDir != "" {
		sw, err := fetch.NewSnapshotWriter(cfg.SnapshotDir)
		if err != nil {
			return err
		}
		scanOpts = append(scanOpts, scan.WithSnapshotter(sw))
	}

	ds, runErr := scan.New(fetcher, scanOpts...).Run(ctx, cfg.Sources)
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		logger.Error("scan stopped", slog.String("error", runErr.Error()))
	}
	if interrupted {
		logger.Warn("scan interrupted, exporting partial dataset")
	}

	printSummary(cmd, ds)

	writer, err := export.NewWriterFor(logger, formats, export.Options{
		Dir:      cfg.OutputDir,
		BaseName: cfg.BaseName,
		RunID:    ds.RunID,
	})
	if err != nil {
		return err
	}
	paths, err := writer.Write(context.WithoutCancel(ctx), ds.Records)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Data saved to %s\n", p)
	}

	if runErr != nil && !interrupted {
		return runErr
	}
	return nil
}

func printSummary(cmd *cobra.Command, ds *scan.Dataset) {
	out := cmd.OutOrStdout()
	s := ds.Summary()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Summary ===")
	fmt.Fprintf(out, "Run: %s\n", ds.RunID)
	fmt.Fprintf(out, "Total entries: %d\n", s.Total)
	for _, p := range s.Protocols {
		fmt.Fprintf(out, "  %s: %d entries\n", p.Protocol, p.Count)
	}
	if len(s.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped sources: %s\n", strings.Join(s.Skipped, ", "))
	}
	if len(s.Sample) > 0 {
		fmt.Fprintln(out, "Sample data:")
		for i, r := range s.Sample {
			fmt.Fprintf(out, "  %d. %s\n", i+1, utils.JSONToString(r, false))
		}
	}
}
