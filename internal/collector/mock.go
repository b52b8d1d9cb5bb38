package collector

import (
	"context"
	"sync"
	"time"

	"SignalSentinel/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// Err, when set, is returned from every call.
type MockSource struct {
	SourceName string
	Price      float64
	Bars       map[model.Timeframe][]model.Bar
	Err        error
	TickerErr  error

	mu    sync.Mutex
	calls int
}

func (m *MockSource) Name() string {
	if m.SourceName == "" {
		return "mock"
	}
	return m.SourceName
}

// Calls returns how many fetches reached the mock.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockSource) FetchOHLCV(_ context.Context, asset model.Asset, tf model.Timeframe, limit int) (model.Series, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return model.Series{}, m.Err
	}
	bars, ok := m.Bars[tf]
	if !ok {
		bars = GenerateMockBars(m.Price, limit, tf.Duration(), time.Now().UTC())
	}
	if limit > 0 && len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return model.Series{Asset: asset.Symbol, Timeframe: tf, Bars: bars}, nil
}

func (m *MockSource) FetchTicker(_ context.Context, asset model.Asset) (model.Ticker, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.TickerErr != nil {
		return model.Ticker{}, m.TickerErr
	}
	if m.Err != nil {
		return model.Ticker{}, m.Err
	}
	return model.Ticker{Asset: asset.Symbol, LastPrice: m.Price, FetchedAt: time.Now().UTC()}, nil
}

// GenerateMockBars builds count gently rising bars of width step ending at end.
func GenerateMockBars(basePrice float64, count int, step time.Duration, end time.Time) []model.Bar {
	if step <= 0 {
		step = time.Hour
	}
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Time:   end.Add(-time.Duration(count-1-i) * step).Truncate(step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
