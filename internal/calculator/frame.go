package calculator

import "SignalSentinel/internal/model"

// Default indicator parameters.
const (
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	BollingerWindow = 20
	BollingerK      = 2.0
)

// FrameOptions selects which columns BuildFrame computes.
type FrameOptions struct {
	RSI       bool
	MACD      bool
	Bollinger bool
	MA        []int // moving-average windows
}

// AllIndicators enables every column with the chart moving averages.
func AllIndicators() FrameOptions {
	return FrameOptions{RSI: true, MACD: true, Bollinger: true, MA: []int{20, 50}}
}

// BuildFrame computes the requested columns from scratch over the close series.
func BuildFrame(series model.Series, opts FrameOptions) *model.IndicatorFrame {
	f := &model.IndicatorFrame{Series: series}
	closes := Closes(series.Bars)

	if opts.RSI {
		f.RSI = RSI(closes, RSIPeriod)
	}
	if opts.MACD {
		m := MACD(closes, MACDFast, MACDSlow, MACDSignal)
		f.MACD, f.Signal, f.Histogram = m.MACD, m.Signal, m.Histogram
	}
	if opts.Bollinger {
		b := Bollinger(closes, BollingerWindow, BollingerK)
		f.BBMid, f.BBUpper, f.BBLower = b.Mid, b.Upper, b.Lower
	}
	if len(opts.MA) > 0 {
		f.MA = make(map[int][]float64, len(opts.MA))
		for _, w := range opts.MA {
			f.MA[w] = SMA(closes, w)
		}
	}
	return f
}
