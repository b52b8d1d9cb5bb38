package model

import (
	"fmt"
	"time"
)

// Asset identifies a tradable pair. Symbol is exchange-native ("BTC/USDT");
// FallbackSymbol overrides the derived symbol on the fallback source.
type Asset struct {
	Symbol         string `yaml:"symbol"`
	FallbackSymbol string `yaml:"fallback_symbol"`
}

func (a Asset) String() string { return a.Symbol }

// Bar represents a single candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series holds bars for one asset at one timeframe, oldest first.
type Series struct {
	Asset     string
	Timeframe Timeframe
	Bars      []Bar
}

func (s Series) Len() int    { return len(s.Bars) }
func (s Series) Empty() bool { return len(s.Bars) == 0 }
func (s Series) Last() Bar   { return s.Bars[len(s.Bars)-1] }
func (s Series) First() Bar  { return s.Bars[0] }

// Ticker is the last traded price snapshot.
type Ticker struct {
	Asset     string
	LastPrice float64
	FetchedAt time.Time
}

// Timeframe is the bar interval.
type Timeframe string

const (
	Timeframe1h Timeframe = "1h"
	Timeframe4h Timeframe = "4h"
	Timeframe1d Timeframe = "1d"
)

// Duration returns the length of one bar.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case Timeframe1h:
		return time.Hour
	case Timeframe4h:
		return 4 * time.Hour
	case Timeframe1d:
		return 24 * time.Hour
	default:
		return 0
	}
}

// ParseTimeframe validates a timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case Timeframe1h, Timeframe4h, Timeframe1d:
		return tf, nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// Lookback is the span shown in the summary trend sparkline.
type Lookback string

const (
	Lookback1w Lookback = "1w"
	Lookback1m Lookback = "1m"
	Lookback3m Lookback = "3m"
)

// Hours returns the lookback span in hours.
func (l Lookback) Hours() int {
	switch l {
	case Lookback1w:
		return 24 * 7
	case Lookback1m:
		return 24 * 30
	case Lookback3m:
		return 24 * 90
	default:
		return 0
	}
}

// ParseLookback validates a lookback string.
func ParseLookback(s string) (Lookback, error) {
	switch lb := Lookback(s); lb {
	case Lookback1w, Lookback1m, Lookback3m:
		return lb, nil
	}
	return "", fmt.Errorf("unknown lookback %q", s)
}

// ChangeWindow is one of the fixed percent-change sub-windows.
type ChangeWindow string

const (
	Change1h ChangeWindow = "1h"
	Change1d ChangeWindow = "1d"
	Change1w ChangeWindow = "1w"
	Change1m ChangeWindow = "1m"
)

// ChangeWindows lists the sub-windows in display order.
var ChangeWindows = []ChangeWindow{Change1h, Change1d, Change1w, Change1m}

// Duration returns how far back the window starts.
func (w ChangeWindow) Duration() time.Duration {
	switch w {
	case Change1h:
		return time.Hour
	case Change1d:
		return 24 * time.Hour
	case Change1w:
		return 7 * 24 * time.Hour
	case Change1m:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}
