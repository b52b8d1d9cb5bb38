package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

// YahooSource implements Source using the Yahoo Finance chart API.
type YahooSource struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooSource creates a Yahoo Finance source.
func NewYahooSource(baseURL, proxyURL string, timeout time.Duration) *YahooSource {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &YahooSource{
		BaseURL: baseURL,
		Client:  newHTTPClient(proxyURL, timeout),
	}
}

func (f *YahooSource) Name() string { return "yahoo" }

// yahooWindow is the fixed recent window requested per timeframe. Yahoo has no
// 4h interval, so 4h bars are built from 60m bars.
var yahooWindow = map[model.Timeframe]struct{ interval, rng string }{
	model.Timeframe1h: {"60m", "3mo"},
	model.Timeframe4h: {"60m", "3mo"},
	model.Timeframe1d: {"1d", "2y"},
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// valueAt returns vals[i] as a number; nulls and missing positions report false.
func valueAt(vals []interface{}, i int) (float64, bool) {
	if i >= len(vals) || vals[i] == nil {
		return 0, false
	}
	switch n := vals[i].(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (f *YahooSource) fetchChart(ctx context.Context, symbol, interval, rng string) ([]model.Bar, float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(symbol), interval, rng)

	body, err := getBody(ctx, f.Client, u, http.Header{"User-Agent": []string{"Mozilla/5.0"}})
	if err != nil {
		return nil, 0, errors.Wrap(err, "yahoo chart")
	}

	var chart yahooChart
	if err := sonic.Unmarshal(body, &chart); err != nil {
		return nil, 0, errors.Wrap(err, "yahoo decode")
	}
	if chart.Chart.Error != nil {
		return nil, 0, errors.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, 0, errors.Wrap(ErrNoData, "yahoo")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, ok1 := valueAt(quote.Open, i)
		h, ok2 := valueAt(quote.High, i)
		l, ok3 := valueAt(quote.Low, i)
		c, ok4 := valueAt(quote.Close, i)
		if !(ok1 && ok2 && ok3 && ok4) {
			continue // skip null bars
		}
		v, _ := valueAt(quote.Volume, i)
		bars = append(bars, model.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, result.Meta.RegularMarketPrice, nil
}

// FetchOHLCV returns up to limit of the most recent bars in the fixed window for tf.
func (f *YahooSource) FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error) {
	w, ok := yahooWindow[tf]
	if !ok {
		return model.Series{}, errors.Errorf("yahoo: unsupported timeframe %q", tf)
	}
	bars, _, err := f.fetchChart(ctx, YahooSymbol(asset), w.interval, w.rng)
	if err != nil {
		return model.Series{}, err
	}
	if tf == model.Timeframe4h {
		bars = aggregateBars(bars, 4*time.Hour)
	}
	// Trim to requested count
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return model.Series{Asset: asset.Symbol, Timeframe: tf, Bars: bars}, nil
}

// FetchTicker returns the regular market price, or the latest close when the
// chart meta carries none.
func (f *YahooSource) FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, error) {
	bars, price, err := f.fetchChart(ctx, YahooSymbol(asset), "1d", "5d")
	if err != nil {
		return model.Ticker{}, err
	}
	if price <= 0 {
		if len(bars) == 0 {
			return model.Ticker{}, errors.Wrap(ErrNoData, "yahoo: no price data")
		}
		price = bars[len(bars)-1].Close
	}
	return model.Ticker{Asset: asset.Symbol, LastPrice: price, FetchedAt: time.Now().UTC()}, nil
}

// aggregateBars merges chronological bars into buckets of width d aligned to
// UTC midnight.
func aggregateBars(bars []model.Bar, d time.Duration) []model.Bar {
	if len(bars) == 0 {
		return nil
	}
	var out []model.Bar
	var cur model.Bar
	var started bool

	for _, b := range bars {
		bucket := b.Time.Truncate(d)
		if !started || !bucket.Equal(cur.Time) {
			if started {
				out = append(out, cur)
			}
			cur = model.Bar{Time: bucket, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if started {
		out = append(out, cur)
	}
	return out
}
