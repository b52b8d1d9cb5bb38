package collector

import (
	"math"
	"sort"

	"SignalSentinel/internal/model"
)

// ValidBar reports whether b is finite, non-negative and internally consistent
// (low <= open, close <= high) with a positive close.
func ValidBar(b model.Bar) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if b.Time.IsZero() || b.Close <= 0 || b.Low > b.High {
		return false
	}
	return b.Open >= b.Low && b.Open <= b.High && b.Close >= b.Low && b.Close <= b.High
}

// Sanitize drops invalid bars, orders the rest chronologically in UTC and keeps
// the last bar for any duplicated timestamp. It returns the cleaned series and
// the number of bars removed. The input is not modified.
func Sanitize(s model.Series) (model.Series, int) {
	bars := make([]model.Bar, 0, len(s.Bars))
	for _, b := range s.Bars {
		if !ValidBar(b) {
			continue
		}
		b.Time = b.Time.UTC()
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	removed := len(s.Bars) - len(out)
	s.Bars = out
	return s, removed
}
