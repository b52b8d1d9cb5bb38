package summary

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"
)

// MaxBarsPerCall caps the summary window to what one provider call returns.
const MaxBarsPerCall = 1000

// ChartBars is the depth of the detailed chart frame.
const ChartBars = 1000

// MarketData is the read side of the cached provider.
type MarketData interface {
	FetchOHLCV(ctx context.Context, asset model.Asset, tf model.Timeframe, limit int) model.Series
	FetchTicker(ctx context.Context, asset model.Asset) (model.Ticker, bool)
}

// Options is the explicit configuration of one batch run.
type Options struct {
	Assets         []model.Asset
	Lookback       model.Lookback
	ChartTimeframe model.Timeframe
	Strategy       model.StrategyName
	AlertsOnly     bool
	Indicators     calculator.FrameOptions
	Workers        int // assets processed concurrently, 1 = sequential
}

// Aggregator drives the per-asset pipeline: fetch, indicators, decisions.
type Aggregator struct {
	Data       MarketData
	Strategies []strategy.Strategy
	Metrics    *metrics.Metrics
	Now        func() time.Time
}

// New creates an Aggregator running every built-in strategy.
func New(data MarketData, m *metrics.Metrics) *Aggregator {
	return &Aggregator{
		Data:       data,
		Strategies: strategy.All(),
		Metrics:    m,
		Now:        time.Now,
	}
}

type assetResult struct {
	row    model.SummaryRow
	alerts []model.AlertRecord
}

// Run processes every configured asset and always completes. Assets without
// data are skipped and listed in Report.Skipped; rows keep the configured order.
func (a *Aggregator) Run(ctx context.Context, opts Options) *Report {
	start := time.Now()
	defer a.Metrics.ObserveBatch(start)
	runID := uuid.NewString()
	logger.Debugf("batch %s: %d assets", runID, len(opts.Assets))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]*assetResult, len(opts.Assets))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, asset := range opts.Assets {
		i, asset := i, asset
		g.Go(func() error {
			results[i] = a.processAsset(ctx, asset, opts.Lookback)
			return nil
		})
	}
	_ = g.Wait() // per-asset failures never surface as errors

	report := &Report{
		RunID:       runID,
		GeneratedAt: a.Now().UTC(),
		Strategy:    opts.Strategy,
		Decisions:   make(map[string]map[model.StrategyName]model.Decision, len(opts.Assets)),
	}
	for i, res := range results {
		if res == nil {
			a.Metrics.AssetSkipped()
			report.Skipped = append(report.Skipped, opts.Assets[i].Symbol)
			continue
		}
		report.Assets = append(report.Assets, res.row.Asset)
		report.Decisions[res.row.Asset] = res.row.Decisions
		report.Alerts = append(report.Alerts, res.alerts...)
		if opts.AlertsOnly && !res.row.HasSignal() {
			continue
		}
		report.Rows = append(report.Rows, res.row)
	}
	logger.Infof("batch %s done: %d rows, %d alerts, %d skipped in %s",
		runID, len(report.Rows), len(report.Alerts), len(report.Skipped), time.Since(start).Round(time.Millisecond))
	return report
}

// processAsset returns nil when the asset has no data this cycle. A panic
// anywhere in the pipeline is contained to the asset.
func (a *Aggregator) processAsset(ctx context.Context, asset model.Asset, lookback model.Lookback) (res *assetResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("pipeline for %s panicked: %v\n%s", asset, r, debug.Stack())
			res = nil
		}
	}()

	ticker, ok := a.Data.FetchTicker(ctx, asset)
	if !ok {
		logger.Warnf("skip %s: no current price", asset)
		return nil
	}

	hours := lookback.Hours()
	series := a.Data.FetchOHLCV(ctx, asset, model.Timeframe1h, min(hours, MaxBarsPerCall))
	if series.Empty() {
		logger.Warnf("skip %s: no summary bars", asset)
		return nil
	}
	last := series.Last().Time
	window := calculator.TrimSince(series.Bars, last.Add(-time.Duration(hours)*time.Hour))

	row := model.SummaryRow{
		Asset:        asset.Symbol,
		CurrentPrice: ticker.LastPrice,
		Changes:      make(map[model.ChangeWindow]float64, len(model.ChangeWindows)),
		Trend:        calculator.Closes(window),
		Decisions:    make(map[model.StrategyName]model.Decision, len(a.Strategies)),
	}
	for _, w := range model.ChangeWindows {
		if pct, ok := calculator.PercentChange(ticker.LastPrice, window, last.Add(-w.Duration())); ok {
			row.Changes[w] = pct
		}
	}

	var alerts []model.AlertRecord
	for _, st := range a.Strategies {
		s := a.Data.FetchOHLCV(ctx, asset, st.Timeframe(), st.Limit())
		r := st.Evaluate(asset.Symbol, s)
		row.Decisions[st.Name()] = r.Decision
		a.Metrics.Decision(string(st.Name()), string(r.Decision))
		logger.Debugf("%s %s: %s (%s)", asset, st.Name(), r.Decision, r.Rule)
		if r.Alert != nil {
			alerts = append(alerts, *r.Alert)
		}
	}
	return &assetResult{row: row, alerts: alerts}
}

// Chart returns the indicator frame for detailed charting of one asset, or
// false when no bars are available.
func (a *Aggregator) Chart(ctx context.Context, asset model.Asset, tf model.Timeframe, opts calculator.FrameOptions) (*model.IndicatorFrame, bool) {
	s := a.Data.FetchOHLCV(ctx, asset, tf, ChartBars)
	if s.Empty() {
		return nil, false
	}
	return calculator.BuildFrame(s, opts), true
}
