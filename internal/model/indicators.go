package model

import "math"

// Undefined marks indicator positions without enough history.
var Undefined = math.NaN()

// IsDefined reports whether v is a usable indicator value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IndicatorFrame is a Series plus derived columns aligned by position.
// Columns that were not requested are nil; computed columns have the same
// length as Series.Bars and hold Undefined during warm-up.
type IndicatorFrame struct {
	Series Series

	RSI       []float64
	MACD      []float64
	Signal    []float64
	Histogram []float64
	BBMid     []float64
	BBUpper   []float64
	BBLower   []float64
	MA        map[int][]float64 // keyed by window, e.g. 20, 50, 200
}

// Len returns the number of rows in the frame.
func (f *IndicatorFrame) Len() int { return len(f.Series.Bars) }

// LastClose returns the close of the latest bar, or Undefined for an empty frame.
func (f *IndicatorFrame) LastClose() float64 {
	if f.Len() == 0 {
		return Undefined
	}
	return f.Series.Last().Close
}

// Latest returns the last value of col, or Undefined if col is empty.
func Latest(col []float64) float64 {
	if len(col) == 0 {
		return Undefined
	}
	return col[len(col)-1]
}
