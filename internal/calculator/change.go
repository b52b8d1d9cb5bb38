package calculator

import (
	"sort"
	"time"

	"SignalSentinel/internal/model"
)

// TrimSince returns the bars whose timestamp is at or after cutoff.
// bars must be in chronological order; the result shares the backing array.
func TrimSince(bars []model.Bar, cutoff time.Time) []model.Bar {
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(cutoff) })
	return bars[i:]
}

// PercentChange returns (current - start) / start * 100 where start is the close
// of the first bar at or after cutoff. It reports false when no such bar exists
// or the starting close is not positive.
func PercentChange(current float64, bars []model.Bar, cutoff time.Time) (float64, bool) {
	window := TrimSince(bars, cutoff)
	if len(window) == 0 {
		return 0, false
	}
	start := window[0].Close
	if start <= 0 || !model.IsDefined(current) {
		return 0, false
	}
	return (current - start) / start * 100, true
}
