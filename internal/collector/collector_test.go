package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"

	"SignalSentinel/internal/model"
)

var btc = model.Asset{Symbol: "BTC/USDT"}

func hourlyBars(n int, price float64) []model.Bar {
	end := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return GenerateMockBars(price, n, time.Hour, end)
}

func TestSymbols(t *testing.T) {
	tests := []struct {
		asset   model.Asset
		binance string
		yahoo   string
	}{
		{model.Asset{Symbol: "BTC/USDT"}, "BTCUSDT", "BTC-USD"},
		{model.Asset{Symbol: "eth/usdc"}, "ETHUSDC", "ETH-USD"},
		{model.Asset{Symbol: "ETH/BTC"}, "ETHBTC", "ETH-BTC"},
		{model.Asset{Symbol: "SUI/USDT", FallbackSymbol: "SUI20947-USD"}, "SUIUSDT", "SUI20947-USD"},
	}
	for _, tt := range tests {
		if got := BinanceSymbol(tt.asset); got != tt.binance {
			t.Errorf("%s: expected binance %q, got %q", tt.asset, tt.binance, got)
		}
		if got := YahooSymbol(tt.asset); got != tt.yahoo {
			t.Errorf("%s: expected yahoo %q, got %q", tt.asset, tt.yahoo, got)
		}
	}
}

func TestSanitize_DropsInvalidAndDuplicates(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := model.Series{Bars: []model.Bar{
		{Time: base.Add(2 * time.Hour), Open: 10, High: 12, Low: 9, Close: 11},
		{Time: base, Open: 10, High: 11, Low: 9, Close: 10},
		{Time: base.Add(time.Hour), Open: 10, High: 9, Low: 11, Close: 10},     // low > high
		{Time: base.Add(3 * time.Hour), Open: 10, High: 11, Low: 9, Close: 12}, // close above high
		{Time: base.Add(4 * time.Hour), Open: 10, High: 11, Low: 9, Close: math.NaN()},
		{Time: base.Add(5 * time.Hour), Open: 10, High: 11, Low: 9, Close: 10, Volume: -1},
		{Time: base.Add(2 * time.Hour), Open: 11, High: 13, Low: 10, Close: 12}, // duplicate, newer wins
	}}
	out, rejected := Sanitize(in)
	if rejected != 5 {
		t.Errorf("expected 5 rejected bars, got %d", rejected)
	}
	if len(out.Bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(out.Bars))
	}
	if !out.Bars[0].Time.Equal(base) || out.Bars[1].Close != 12 {
		t.Errorf("unexpected bars after sanitize: %+v", out.Bars)
	}
	if len(in.Bars) != 7 {
		t.Error("input series must not be modified")
	}
}

func TestChain_FallsBackOnPrimaryFailure(t *testing.T) {
	primary := &MockSource{SourceName: "primary", Err: errors.Wrap(ErrUnavailable, "rate limited")}
	fallback := &MockSource{SourceName: "fallback", Price: 100, Bars: map[model.Timeframe][]model.Bar{
		model.Timeframe1h: hourlyBars(60, 100),
	}}
	chain := NewChain(time.Second, nil, primary, fallback)

	s, err := chain.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 60 || s.Asset != "BTC/USDT" {
		t.Errorf("expected 60 fallback bars for BTC/USDT, got %d for %q", s.Len(), s.Asset)
	}
	if primary.Calls() != 1 || fallback.Calls() != 1 {
		t.Errorf("expected one call per source, got %d and %d", primary.Calls(), fallback.Calls())
	}
}

func TestChain_EmptyPrimaryFallsThrough(t *testing.T) {
	primary := &MockSource{SourceName: "primary", Bars: map[model.Timeframe][]model.Bar{model.Timeframe1h: {}}}
	fallback := &MockSource{SourceName: "fallback", Price: 50}
	s, err := NewChain(0, nil, primary, fallback).FetchOHLCV(context.Background(), btc, model.Timeframe1h, 10)
	if err != nil || s.Len() != 10 {
		t.Errorf("expected 10 fallback bars, got %d (err %v)", s.Len(), err)
	}
}

func TestChain_AllSourcesFail(t *testing.T) {
	chain := NewChain(time.Second, nil,
		&MockSource{SourceName: "primary", Err: fmt.Errorf("boom")},
		&MockSource{SourceName: "fallback", Err: errors.Wrap(ErrUnavailable, "timeout")},
	)
	s, err := chain.FetchOHLCV(context.Background(), btc, model.Timeframe1d, 300)
	if !s.Empty() {
		t.Errorf("expected empty series, got %d bars", s.Len())
	}
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}

	if _, err := chain.FetchTicker(context.Background(), btc); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ticker ErrNoData, got %v", err)
	}
}

func TestChain_RejectsNonPositiveTicker(t *testing.T) {
	chain := NewChain(0, nil, &MockSource{SourceName: "primary", Price: 0}, &MockSource{SourceName: "fallback", Price: 42})
	tk, err := chain.FetchTicker(context.Background(), btc)
	if err != nil || tk.LastPrice != 42 {
		t.Errorf("expected fallback price 42, got %v (err %v)", tk.LastPrice, err)
	}
}

func TestProvider_CachesAndNeverFails(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	failing := &MockSource{SourceName: "primary", Err: errors.Wrap(ErrUnavailable, "down")}
	good := &MockSource{SourceName: "fallback", Price: 10}
	p := NewProvider(NewChain(0, nil, failing, good), ProviderOptions{
		SeriesTTL: 5 * time.Minute, TickerTTL: time.Minute, Clock: clock,
	})

	a := p.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20)
	b := p.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20)
	if a.Len() != 20 || &a.Bars[0] != &b.Bars[0] {
		t.Error("expected the same cached series on the second fetch")
	}
	if good.Calls() != 1 {
		t.Errorf("expected a single upstream call, got %d", good.Calls())
	}

	down := NewProvider(NewChain(0, nil, failing), ProviderOptions{Clock: clock})
	if s := down.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20); !s.Empty() {
		t.Error("expected an empty series when every source fails")
	}
	if _, ok := down.FetchTicker(context.Background(), btc); ok {
		t.Error("expected ticker to be unavailable")
	}
}

func TestBinanceSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/klines":
			if r.URL.Query().Get("symbol") != "BTCUSDT" || r.URL.Query().Get("interval") != "4h" {
				http.Error(w, "bad symbol", http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `[[1704067200000,"100.0","110.5","95.0","105.0","12.5",1704081599999,"0",1,"0","0","0"],
				[1704081600000,"105.0","106.0","101.0","102.0","3.0",1704095999999,"0",1,"0","0","0"]]`)
		case "/api/v3/ticker/price":
			fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"63000.50"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewBinanceSource(srv.URL, "", time.Second)
	s, err := src.FetchOHLCV(context.Background(), btc, model.Timeframe4h, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 bars, got %d", s.Len())
	}
	first := s.First()
	if !first.Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || first.High != 110.5 || first.Volume != 12.5 {
		t.Errorf("unexpected first bar: %+v", first)
	}

	tk, err := src.FetchTicker(context.Background(), btc)
	if err != nil || tk.LastPrice != 63000.50 {
		t.Errorf("expected price 63000.50, got %v (err %v)", tk.LastPrice, err)
	}
}

func TestBinanceSource_RateLimitIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewBinanceSource(srv.URL, "", time.Second).FetchOHLCV(context.Background(), btc, model.Timeframe1h, 60)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestBinanceSource_MalformedIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer srv.Close()

	_, err := NewBinanceSource(srv.URL, "", time.Second).FetchOHLCV(context.Background(), btc, model.Timeframe1h, 60)
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Errorf("expected a permanent decode error, got %v", err)
	}
}

func TestYahooSource_AggregatesFourHourBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/BTC-USD" || r.URL.Query().Get("interval") != "60m" {
			http.NotFound(w, r)
			return
		}
		// 2024-01-01 00:00..05:00 hourly, with one null bar at 02:00
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":107},
			"timestamp":[1704067200,1704070800,1704074400,1704078000,1704081600,1704085200],
			"indicators":{"quote":[{
				"open":[100,101,null,103,104,105],
				"high":[102,103,null,110,106,108],
				"low":[99,100,null,102,103,104],
				"close":[101,102,null,104,105,107],
				"volume":[1,2,null,3,4,5]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	src := NewYahooSource(srv.URL, "", time.Second)
	s, err := src.FetchOHLCV(context.Background(), btc, model.Timeframe4h, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 four-hour bars, got %d", s.Len())
	}
	first := s.First()
	if first.Open != 100 || first.High != 110 || first.Low != 99 || first.Close != 104 || first.Volume != 6 {
		t.Errorf("unexpected aggregated bar: %+v", first)
	}
	if !s.Last().Time.Equal(time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected second bucket start %v", s.Last().Time)
	}
}

func TestYahooSource_ApiError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer srv.Close()

	if _, err := NewYahooSource(srv.URL, "", time.Second).FetchOHLCV(context.Background(), btc, model.Timeframe1d, 300); err == nil {
		t.Error("expected an error for a chart api error payload")
	}
}

// hangingServer answers only once the client gives up.
func hangingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChain_TimeoutFallsBack(t *testing.T) {
	primary := NewBinanceSource(hangingServer(t).URL, "", 10*time.Second)
	fallback := &MockSource{SourceName: "yahoo", Bars: map[model.Timeframe][]model.Bar{model.Timeframe1h: hourlyBars(20, 100)}}
	chain := NewChain(200*time.Millisecond, nil, primary, fallback)

	start := time.Now()
	s, err := chain.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("expected the fallback to serve, got %v", err)
	}
	if s.Len() != 20 {
		t.Errorf("expected 20 fallback bars, got %d", s.Len())
	}
	if elapsed > 2*time.Second {
		t.Errorf("a hanging primary must not block the batch, took %v", elapsed)
	}
}

func TestChain_AllSourcesHang(t *testing.T) {
	srv := hangingServer(t)
	chain := NewChain(200*time.Millisecond, nil,
		NewBinanceSource(srv.URL, "", 10*time.Second),
		NewBinanceSource(srv.URL, "", 10*time.Second))

	start := time.Now()
	s, err := chain.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected an empty series, got %d bars", s.Len())
	}
	if _, err := chain.FetchTicker(context.Background(), btc); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for the ticker, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("hanging sources must time out, took %v", elapsed)
	}
}

func TestProvider_CancelledCallerNotCached(t *testing.T) {
	src := &MockSource{Price: 100, Bars: map[model.Timeframe][]model.Bar{model.Timeframe1h: hourlyBars(20, 100)}}
	p := NewProvider(NewChain(0, nil, src), ProviderOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.FetchOHLCV(ctx, btc, model.Timeframe1h, 20)
	p.FetchTicker(ctx, btc)

	if s := p.FetchOHLCV(context.Background(), btc, model.Timeframe1h, 20); s.Len() != 20 {
		t.Errorf("expected a fresh fetch after a cancelled caller, got %d bars", s.Len())
	}
	if _, ok := p.FetchTicker(context.Background(), btc); !ok {
		t.Error("expected a fresh ticker after a cancelled caller")
	}
	if src.Calls() != 4 {
		t.Errorf("expected 4 upstream calls, got %d", src.Calls())
	}
}
