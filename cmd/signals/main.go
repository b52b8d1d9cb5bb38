package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/summary"
)

var (
	version = "0.1.0"
	cfgPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "signals",
		Short: "Multi-strategy technical signal engine",
		Long: `signals tracks a watch list of crypto assets, computes RSI, MACD,
Bollinger bands and moving averages, and turns them into Short, Long and
Income decisions. Without a subcommand it runs the scheduled service.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	defaultPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultPath, "Path to the YAML config (CONFIG_PATH)")

	// Subcommands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(chartCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("signals version %s\n", version)
		},
	}
}

// loadConfig reads and validates the config, then configures the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.LogLevel, "signals"); err != nil {
		return nil, err
	}
	return cfg, nil
}

type pipeline struct {
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	chain      *collector.Chain
	aggregator *summary.Aggregator
}

// newPipeline wires Binance as primary source and Yahoo as fallback behind the cache.
func newPipeline(cfg *config.Config) *pipeline {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	binance := collector.NewBinanceSource(cfg.Sources.Binance.BaseURL, cfg.Proxy, cfg.Sources.Binance.Timeout)
	yahoo := collector.NewYahooSource(cfg.Sources.Yahoo.BaseURL, cfg.Proxy, cfg.Sources.Yahoo.Timeout)
	chain := collector.NewChain(max(cfg.Sources.Binance.Timeout, cfg.Sources.Yahoo.Timeout), m, binance, yahoo)

	provider := collector.NewProvider(chain, collector.ProviderOptions{
		SeriesTTL: cfg.Cache.OHLCVTTL,
		TickerTTL: cfg.Cache.TickerTTL,
		Metrics:   m,
	})
	return &pipeline{
		registry:   reg,
		metrics:    m,
		chain:      chain,
		aggregator: summary.New(provider, m),
	}
}
