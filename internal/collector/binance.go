package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// BinanceMaxLimit is the most bars one klines request returns.
const BinanceMaxLimit = 1000

// BinanceSource implements Source using the Binance spot REST API.
type BinanceSource struct {
	BaseURL string
	Client  *http.Client
}

// NewBinanceSource creates a source with a finite timeout and optional proxy.
func NewBinanceSource(baseURL, proxyURL string, timeout time.Duration) *BinanceSource {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	return &BinanceSource{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (s *BinanceSource) Name() string { return "binance" }

// FetchOHLCV returns the limit most recent klines, oldest first.
// Each kline is [openTime, open, high, low, close, volume, closeTime, ...]
// with prices encoded as strings.
func (s *BinanceSource) FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error) {
	if limit <= 0 || limit > BinanceMaxLimit {
		limit = BinanceMaxLimit
	}
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		s.BaseURL, url.QueryEscape(BinanceSymbol(asset)), tf, limit)

	body, err := getBody(ctx, s.Client, endpoint, nil)
	if err != nil {
		return model.Series{}, errors.Wrap(err, "binance klines")
	}

	var rows [][]interface{}
	if err := sonic.Unmarshal(body, &rows); err != nil {
		return model.Series{}, errors.Wrap(err, "binance decode klines")
	}

	bars := make([]model.Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return model.Series{}, errors.Wrapf(err, "binance kline %d", i)
		}
		bars = append(bars, bar)
	}
	return model.Series{Asset: asset.Symbol, Timeframe: tf, Bars: bars}, nil
}

// FetchTicker returns the last traded price.
func (s *BinanceSource) FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", s.BaseURL, url.QueryEscape(BinanceSymbol(asset)))
	body, err := getBody(ctx, s.Client, endpoint, nil)
	if err != nil {
		return model.Ticker{}, errors.Wrap(err, "binance ticker")
	}
	var result struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := sonic.Unmarshal(body, &result); err != nil {
		return model.Ticker{}, errors.Wrap(err, "binance decode ticker")
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return model.Ticker{}, errors.Wrapf(err, "binance parse price %q", result.Price)
	}
	return model.Ticker{Asset: asset.Symbol, LastPrice: price, FetchedAt: time.Now().UTC()}, nil
}

func parseKline(row []interface{}) (model.Bar, error) {
	if len(row) < 6 {
		return model.Bar{}, errors.Errorf("expected at least 6 fields, got %d", len(row))
	}
	openMs, ok := row[0].(float64)
	if !ok {
		return model.Bar{}, errors.Errorf("open time has type %T", row[0])
	}
	var vals [5]float64
	for i := range vals {
		v, err := parseNumber(row[i+1])
		if err != nil {
			return model.Bar{}, err
		}
		vals[i] = v
	}
	return model.Bar{
		Time:   time.UnixMilli(int64(openMs)).UTC(),
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseNumber(v interface{}) (float64, error) {
	switch n := v.(type) {
	case string:
		return strconv.ParseFloat(n, 64)
	case float64:
		return n, nil
	default:
		return 0, errors.Errorf("unexpected number type %T", v)
	}
}
