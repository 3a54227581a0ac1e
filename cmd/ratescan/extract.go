package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/ratescan/core/dom"
	"github.com/leofalp/ratescan/core/extract"
	"github.com/leofalp/ratescan/internal/config"
	"github.com/leofalp/ratescan/internal/utils"
)

type extractOptions struct {
	label      string
	scope      string
	configPath string
	asJSON     bool
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Run the extraction engine on a saved HTML file",
		Long: `Parses a local HTML file and prints the records the engine extracts
from it, along with the strategy that produced them. Heuristics come from the
config file when one is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.label, "label", "l", "local", "protocol label for the records")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "CSS selector restricting extraction")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file providing heuristics")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print records as a JSON array")
	return cmd
}

func runExtract(cmd *cobra.Command, path string, opts *extractOptions) error {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logFormat, _ := cmd.Flags().GetString("log-format")
	logger, err := newLogger(cmd, logLevel, logFormat)
	if err != nil {
		return err
	}

	heuristics := extract.DefaultHeuristics()
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		heuristics = cfg.Heuristics
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer utils.CloseWithLog(f)

	doc, err := dom.Parse(f)
	if err != nil {
		return err
	}

	root := doc.Root()
	if opts.scope != "" {
		nodes := doc.Select(opts.scope)
		if len(nodes) == 0 {
			return fmt.Errorf("scope %q matched nothing in %s", opts.scope, path)
		}
		root = nodes[0]
	}

	engine := extract.New(extract.WithHeuristics(heuristics), extract.WithLogger(logger))
	result := engine.Run(root, opts.label)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		fmt.Fprintln(out, utils.JSONToString(result.Records, true))
		return nil
	}

	strategy := string(result.Strategy)
	if strategy == "" {
		strategy = "none"
	}
	fmt.Fprintf(out, "Strategy: %s\n", strategy)
	fmt.Fprintf(out, "Addresses found: %d\n", result.Addresses)
	fmt.Fprintf(out, "Records: %d\n", len(result.Records))
	for i, r := range result.Records {
		fmt.Fprintf(out, "  %d. %s\n", i+1, utils.JSONToString(r, false))
	}
	return nil
}
