package collector

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// Chain queries its sources in order; the first non-empty success wins.
// Failures are logged and the next source is tried.
type Chain struct {
	Sources []Source
	Timeout time.Duration // per-source deadline, 0 disables
	Metrics *metrics.Metrics
}

// NewChain creates a Chain over sources, primary first.
func NewChain(timeout time.Duration, m *metrics.Metrics, sources ...Source) *Chain {
	return &Chain{Sources: sources, Timeout: timeout, Metrics: m}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name()
	}
	return strings.Join(names, ">")
}

// FetchOHLCV returns sanitized bars from the first source that yields any.
// When every source fails the result is an empty series and an error wrapping ErrNoData.
func (c *Chain) FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error) {
	var failures []string
	for i, src := range c.Sources {
		s, err := c.fetchSeries(ctx, src, asset, tf, limit)
		if err != nil {
			c.Metrics.SourceRequest(src.Name(), resultLabel(err))
			logger.Warnf("ohlcv %s %s x%d from %s failed: %v", asset, tf, limit, src.Name(), err)
			failures = append(failures, src.Name()+": "+err.Error())
			continue
		}
		c.Metrics.SourceRequest(src.Name(), "ok")
		if i > 0 {
			c.Metrics.Fallback()
			logger.Infof("ohlcv %s %s served by fallback %s", asset, tf, src.Name())
		}
		return s, nil
	}
	empty := model.Series{Asset: asset.Symbol, Timeframe: tf}
	return empty, errors.Wrapf(ErrNoData, "all sources failed for %s: %s", asset, strings.Join(failures, "; "))
}

// FetchTicker returns the first positive last price any source reports.
func (c *Chain) FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, error) {
	var failures []string
	for i, src := range c.Sources {
		t, err := c.fetchTicker(ctx, src, asset)
		if err != nil {
			c.Metrics.SourceRequest(src.Name(), resultLabel(err))
			logger.Warnf("ticker %s from %s failed: %v", asset, src.Name(), err)
			failures = append(failures, src.Name()+": "+err.Error())
			continue
		}
		c.Metrics.SourceRequest(src.Name(), "ok")
		if i > 0 {
			c.Metrics.Fallback()
		}
		return t, nil
	}
	return model.Ticker{}, errors.Wrapf(ErrNoData, "all sources failed for %s ticker: %s", asset, strings.Join(failures, "; "))
}

func (c *Chain) fetchSeries(ctx context.Context, src Source, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	s, err := src.FetchOHLCV(ctx, asset, tf, limit)
	if err != nil {
		return model.Series{}, err
	}
	s.Asset, s.Timeframe = asset.Symbol, tf
	s, rejected := Sanitize(s)
	if rejected > 0 {
		c.Metrics.BarRejected(rejected)
		logger.Warnf("dropped %d invalid bars for %s %s from %s", rejected, asset, tf, src.Name())
	}
	if s.Empty() {
		return model.Series{}, errors.Wrap(ErrNoData, "empty series")
	}
	return s, nil
}

func (c *Chain) fetchTicker(ctx context.Context, src Source, asset model.Asset) (model.Ticker, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	t, err := src.FetchTicker(ctx, asset)
	if err != nil {
		return model.Ticker{}, err
	}
	if t.LastPrice <= 0 || math.IsNaN(t.LastPrice) || math.IsInf(t.LastPrice, 0) {
		return model.Ticker{}, errors.Wrapf(ErrNoData, "invalid last price %v", t.LastPrice)
	}
	t.Asset = asset.Symbol
	return t, nil
}

func (c *Chain) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrNoData):
		return "empty"
	default:
		return "error"
	}
}
