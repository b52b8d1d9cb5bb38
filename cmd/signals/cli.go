package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
)

func summaryCmd() *cobra.Command {
	var (
		asJSON     bool
		lookback   string
		strategy   string
		alertsOnly bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Run one batch and print the market overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if lookback != "" {
				cfg.Lookback = lookback
			}
			if strategy != "" {
				cfg.Strategy = strategy
			}
			if alertsOnly {
				cfg.AlertsOnly = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := cfg.Run()
			report := newPipeline(cfg).aggregator.Run(cmd.Context(), opts)
			if asJSON {
				out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
				if err != nil {
					return errors.Wrap(err, "encode report")
				}
				_, err = fmt.Fprintln(os.Stdout, string(out))
				return err
			}
			fmt.Println(notifier.PlainText(notifier.FormatSummary(report, opts.Lookback)))
			fmt.Println()
			if msg := notifier.FormatAlerts(report.Alerts); msg != "" {
				fmt.Println(notifier.PlainText(msg))
			} else {
				fmt.Println(notifier.PlainText(notifier.NoAlerts))
			}
			fmt.Println()
			fmt.Println(notifier.PlainText(notifier.FormatSignals(report)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVarP(&lookback, "lookback", "l", "", "Trend lookback: 1w, 1m or 3m")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "", "Selected strategy: Short, Long or Income")
	cmd.Flags().BoolVar(&alertsOnly, "alerts-only", false, "Only list assets with a non-HOLD decision")
	return cmd
}

func chartCmd() *cobra.Command {
	var timeframe string
	cmd := &cobra.Command{
		Use:   "chart <symbol>",
		Short: "Print the latest indicator values of one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if timeframe != "" {
				cfg.ChartTimeframe = timeframe
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := cfg.Run()
			asset := model.Asset{Symbol: strings.ToUpper(args[0])}
			for _, a := range cfg.Assets {
				if strings.EqualFold(a.Symbol, args[0]) {
					asset = a
				}
			}
			frame, ok := newPipeline(cfg).aggregator.Chart(cmd.Context(), asset, opts.ChartTimeframe, opts.Indicators)
			if !ok {
				return errors.Errorf("no data for %s", asset)
			}
			fmt.Println(notifier.PlainText(notifier.FormatChart(frame)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Candle timeframe: 1h, 4h or 1d")
	return cmd
}
