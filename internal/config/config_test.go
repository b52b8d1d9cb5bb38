package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if len(cfg.Assets) != len(DefaultAssets) {
		t.Errorf("expected %d default assets, got %d", len(DefaultAssets), len(cfg.Assets))
	}
	if cfg.Cache.TickerTTL != time.Minute || cfg.Cache.OHLCVTTL != 5*time.Minute {
		t.Errorf("unexpected cache ttls: %v %v", cfg.Cache.TickerTTL, cfg.Cache.OHLCVTTL)
	}
	if cfg.Workers != 1 {
		t.Errorf("expected sequential default, got %d workers", cfg.Workers)
	}
	opts := cfg.Run()
	if opts.Lookback != model.Lookback1m || opts.ChartTimeframe != model.Timeframe1h || opts.Strategy != model.StrategyShort {
		t.Errorf("unexpected run options: %+v", opts)
	}
	if !opts.Indicators.RSI || !opts.Indicators.MACD || !opts.Indicators.Bollinger || len(opts.Indicators.MA) != 2 {
		t.Errorf("expected every indicator enabled, got %+v", opts.Indicators)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
assets:
  - symbol: SUI/USDT
    fallback_symbol: SUI20947-USD
lookback: 3m
strategy: Income
alerts_only: true
indicators:
  ma: false
cache:
  ohlcv_ttl: 30s
sources:
  yahoo:
    timeout: 3s
`)
	t.Setenv("REFRESH_CRON", "0 * * * * *")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Assets[0].FallbackSymbol != "SUI20947-USD" {
		t.Errorf("fallback symbol not parsed: %+v", cfg.Assets[0])
	}
	if cfg.Cache.OHLCVTTL != 30*time.Second || cfg.Sources.Yahoo.Timeout != 3*time.Second {
		t.Errorf("durations not parsed: %v %v", cfg.Cache.OHLCVTTL, cfg.Sources.Yahoo.Timeout)
	}
	if cfg.Schedule.RefreshCron != "0 * * * * *" || !cfg.TelegramEnabled() {
		t.Error("environment overrides not applied")
	}
	opts := cfg.Run()
	if opts.Lookback != model.Lookback3m || opts.Strategy != model.StrategyIncome || !opts.AlertsOnly {
		t.Errorf("unexpected run options: %+v", opts)
	}
	if opts.Indicators.MA != nil || !opts.Indicators.RSI {
		t.Errorf("expected only the MA toggle off, got %+v", opts.Indicators)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown lookback", func(c *Config) { c.Lookback = "6m" }},
		{"unknown timeframe", func(c *Config) { c.ChartTimeframe = "15m" }},
		{"unknown strategy", func(c *Config) { c.Strategy = "Scalp" }},
		{"empty assets", func(c *Config) { c.Assets = nil }},
		{"blank symbol", func(c *Config) { c.Assets = []model.Asset{{}} }},
		{"zero ticker ttl", func(c *Config) { c.Cache.TickerTTL = 0 }},
		{"negative ohlcv ttl", func(c *Config) { c.Cache.OHLCVTTL = -time.Second }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "token" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "")
			t.Setenv("TELEGRAM_CHAT_ID", "")
			cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); errors.Cause(err) != ErrInvalidConfig {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	if _, err := Load(writeConfig(t, "assets: [")); err == nil {
		t.Error("expected a parse error")
	}
}
