package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/summary"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultPath is used when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// SourceConfig is one market data endpoint.
type SourceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config holds all application configuration.
type Config struct {
	Assets         []model.Asset `yaml:"assets"`
	Lookback       string        `yaml:"lookback"`
	ChartTimeframe string        `yaml:"chart_timeframe"`
	Strategy       string        `yaml:"strategy"`
	AlertsOnly     bool          `yaml:"alerts_only"`
	Workers        int           `yaml:"workers"`
	Indicators     struct {
		MA        bool `yaml:"ma"`
		Bollinger bool `yaml:"bollinger"`
		RSI       bool `yaml:"rsi"`
		MACD      bool `yaml:"macd"`
	} `yaml:"indicators"`
	Cache struct {
		TickerTTL time.Duration `yaml:"ticker_ttl"`
		OHLCVTTL  time.Duration `yaml:"ohlcv_ttl"`
	} `yaml:"cache"`
	Sources struct {
		Binance SourceConfig `yaml:"binance"`
		Yahoo   SourceConfig `yaml:"yahoo"`
	} `yaml:"sources"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	LogLevel string `yaml:"log_level"`
	Proxy    string `yaml:"proxy"`
}

// DefaultAssets is the watch list used when the file names none.
var DefaultAssets = []model.Asset{
	{Symbol: "BTC/USDT"},
	{Symbol: "ETH/USDT"},
	{Symbol: "SOL/USDT"},
	{Symbol: "ADA/USDT"},
	{Symbol: "SUI/USDT"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// chart toggles default to on; an explicit false in the file wins
	cfg.Indicators.MA = true
	cfg.Indicators.Bollinger = true
	cfg.Indicators.RSI = true
	cfg.Indicators.MACD = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "read config")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "parse config")
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}

	// Defaults
	if len(cfg.Assets) == 0 {
		cfg.Assets = append([]model.Asset(nil), DefaultAssets...)
	}
	if cfg.Lookback == "" {
		cfg.Lookback = string(model.Lookback1m)
	}
	if cfg.ChartTimeframe == "" {
		cfg.ChartTimeframe = string(model.Timeframe1h)
	}
	if cfg.Strategy == "" {
		cfg.Strategy = string(model.StrategyShort)
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Cache.TickerTTL == 0 {
		cfg.Cache.TickerTTL = time.Minute
	}
	if cfg.Cache.OHLCVTTL == 0 {
		cfg.Cache.OHLCVTTL = 5 * time.Minute
	}
	if cfg.Sources.Binance.BaseURL == "" {
		cfg.Sources.Binance.BaseURL = "https://api.binance.com"
	}
	if cfg.Sources.Yahoo.BaseURL == "" {
		cfg.Sources.Yahoo.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Sources.Binance.Timeout == 0 {
		cfg.Sources.Binance.Timeout = 10 * time.Second
	}
	if cfg.Sources.Yahoo.Timeout == 0 {
		cfg.Sources.Yahoo.Timeout = 10 * time.Second
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// Validate checks enum values and ranges. Telegram credentials are optional;
// without them alerts are only logged.
func (c *Config) Validate() error {
	if len(c.Assets) == 0 {
		return errors.Wrap(ErrInvalidConfig, "assets must not be empty")
	}
	for i, a := range c.Assets {
		if a.Symbol == "" {
			return errors.Wrapf(ErrInvalidConfig, "assets[%d].symbol is required", i)
		}
	}
	if _, err := model.ParseLookback(c.Lookback); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := model.ParseTimeframe(c.ChartTimeframe); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if _, err := model.ParseStrategyName(c.Strategy); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if c.Workers < 1 {
		return errors.Wrap(ErrInvalidConfig, "workers must be positive")
	}
	if c.Cache.TickerTTL <= 0 || c.Cache.OHLCVTTL <= 0 {
		return errors.Wrap(ErrInvalidConfig, "cache ttls must be positive")
	}
	if c.Sources.Binance.Timeout <= 0 || c.Sources.Yahoo.Timeout <= 0 {
		return errors.Wrap(ErrInvalidConfig, "source timeouts must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.Wrap(ErrInvalidConfig, "telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// Run converts the file-level settings into the options of one batch run.
// Call it on a validated Config.
func (c *Config) Run() summary.Options {
	opts := summary.Options{
		Assets:         c.Assets,
		Lookback:       model.Lookback(c.Lookback),
		ChartTimeframe: model.Timeframe(c.ChartTimeframe),
		Strategy:       model.StrategyName(c.Strategy),
		AlertsOnly:     c.AlertsOnly,
		Workers:        c.Workers,
		Indicators: calculator.FrameOptions{
			RSI:       c.Indicators.RSI,
			MACD:      c.Indicators.MACD,
			Bollinger: c.Indicators.Bollinger,
		},
	}
	if c.Indicators.MA {
		opts.Indicators.MA = []int{20, 50}
	}
	return opts
}

// TelegramEnabled reports whether alerts can be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
