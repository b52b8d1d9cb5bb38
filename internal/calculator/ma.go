package calculator

import (
	"math"

	"SignalSentinel/internal/model"
)

// SMA returns the simple moving average of values over window, aligned with values.
// Positions before the window is full, or whose window contains an undefined value,
// are model.Undefined.
func SMA(values []float64, window int) []float64 {
	out := undefinedSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for _, v := range values[i-window+1 : i+1] {
			if math.IsNaN(v) {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA returns the recursive exponential moving average with alpha = 2/(span+1),
// seeded by the first defined value. No warm-up bias correction is applied.
func EMA(values []float64, span int) []float64 {
	out := undefinedSeries(len(values))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	prev := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(prev) {
			prev = v
		} else {
			prev += alpha * (v - prev)
		}
		out[i] = prev
	}
	return out
}

// Closes extracts the close column of bars.
func Closes(bars []model.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = model.Undefined
	}
	return out
}
