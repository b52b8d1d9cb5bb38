package collector

import (
	"context"
	"time"

	"SignalSentinel/internal/cache"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// ProviderOptions configures the cache layer of a Provider.
type ProviderOptions struct {
	SeriesTTL time.Duration
	TickerTTL time.Duration
	Clock     cache.Clock
	Metrics   *metrics.Metrics
}

type tickerResult struct {
	ticker model.Ticker
	ok     bool
}

// Provider serves OHLCV series and tickers through time-bounded caches in
// front of a source chain. It never returns an error: an outage yields an
// empty series or ok=false, and that outcome is cached like any other.
type Provider struct {
	chain     *Chain
	series    *cache.Cache[model.Series]
	tickers   *cache.Cache[tickerResult]
	seriesTTL time.Duration
	tickerTTL time.Duration
}

// NewProvider wraps chain with caches.
func NewProvider(chain *Chain, opts ProviderOptions) *Provider {
	if opts.SeriesTTL <= 0 {
		opts.SeriesTTL = 5 * time.Minute
	}
	if opts.TickerTTL <= 0 {
		opts.TickerTTL = time.Minute
	}
	return &Provider{
		chain:     chain,
		series:    cache.New[model.Series](opts.Clock, opts.Metrics),
		tickers:   cache.New[tickerResult](opts.Clock, opts.Metrics),
		seriesTTL: opts.SeriesTTL,
		tickerTTL: opts.TickerTTL,
	}
}

// FetchOHLCV returns the cached or freshly fetched series; empty means no data
// for this asset this cycle.
func (p *Provider) FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) model.Series {
	key := cache.Key{Asset: asset.Symbol, Timeframe: tf, Limit: limit, Stage: cache.StageOHLCV}
	return p.series.GetOrFetch(key, p.seriesTTL, func() (model.Series, error) {
		s, _ := p.chain.FetchOHLCV(ctx, asset, tf, limit) // failures already logged
		// an outage is cached, a cancelled caller is not
		return s, ctx.Err()
	})
}

// FetchTicker returns the last price, or ok=false when no source has one.
func (p *Provider) FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, bool) {
	key := cache.Key{Asset: asset.Symbol, Stage: cache.StageTicker}
	r := p.tickers.GetOrFetch(key, p.tickerTTL, func() (tickerResult, error) {
		t, err := p.chain.FetchTicker(ctx, asset)
		return tickerResult{ticker: t, ok: err == nil}, ctx.Err()
	})
	return r.ticker, r.ok
}
