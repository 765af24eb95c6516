package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"investiq/internal/logger"
	"investiq/internal/report"
	"investiq/internal/server"
)

var version = "dev"

type globalOptions struct {
	configFile string
	period     string
	provider   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "investiq",
		Short: "InvestIQ - multi-agent stock analysis",
		Long: `InvestIQ scores a stock with fundamental, sentiment, technical and risk
analysts and combines them into a Buy, Hold, Sell or Avoid recommendation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeSystem()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "configuration file (default $INVESTIQ_CONFIG or config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.period, "period", "", "price history window for technical and risk analysis, e.g. 6mo, 1y")
	rootCmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "market data provider: YAHOO, KITE or MOCK")

	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Analyze one stock symbol",
		Example: `  investiq analyze AAPL
  investiq analyze RELIANCE.NS --period 6mo --json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("no symbol provided")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := report.FormatText
			if asJSON {
				format = report.FormatJSON
			}
			return runAnalyze(cmd.Context(), opts, strings.ToUpper(strings.TrimSpace(args[0])), format)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decision as JSON")
	return cmd
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, host, port)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "InvestIQ %s\n", version)
		},
	}
}

func printBanner() {
	rule := strings.Repeat("=", 60)
	fmt.Println("\n" + rule)
	fmt.Println("InvestIQ: Multi-Agent Investment Analysis System")
	fmt.Println(rule)
	fmt.Println("\nThis system combines:")
	fmt.Println("  - Fundamental Analysis (Financial Health)")
	fmt.Println("  - Sentiment Analysis (Market Mood)")
	fmt.Println("  - Technical Analysis (Price Charts & Indicators)")
	fmt.Println("  - Risk Management (Exposure & Downside Control)")
	fmt.Println("\n" + rule + "\n")
}

func runAnalyze(parent context.Context, opts *globalOptions, symbol string, format report.Format) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, opts)
	if err != nil {
		return err
	}
	defer p.shutdown(context.Background())

	if format == report.FormatText {
		printBanner()
	}

	op := logger.StartOperation(ctx, "cli.analyze", "symbol", symbol)
	d, err := p.engine.Analyze(op.Context(), symbol)
	if err != nil {
		op.EndWithError(err)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\n\nAnalysis interrupted by user.")
			return nil
		}
		return fmt.Errorf("error during analysis: %w", err)
	}
	op.End("recommendation", string(d.Recommendation))

	if p.journal != nil {
		if err := p.journal.Record(ctx, "cli", d); err != nil {
			logger.Warn(ctx, "Failed to journal decision", "symbol", symbol, "error", err)
		}
	}

	out, err := report.Render(d, format)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runServe(parent context.Context, opts *globalOptions, host string, port int) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, opts)
	if err != nil {
		return err
	}
	defer p.shutdown(context.Background())

	cfg := server.Config{
		Host:           p.cfg.Server.Host,
		Port:           p.cfg.Server.Port,
		RequestTimeout: time.Duration(p.cfg.Server.RequestTimeoutSeconds) * time.Second,
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}

	srv := server.New(cfg, p.engine, p.metrics, p.recorder())
	return srv.ListenAndServe(ctx, time.Duration(p.cfg.Server.ShutdownTimeoutSeconds)*time.Second)
}
