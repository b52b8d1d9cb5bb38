package calculator

import "math"

// Bands holds Bollinger bands aligned with the input series.
type Bands struct {
	Mid   []float64
	Upper []float64
	Lower []float64
}

// Bollinger returns SMA(window) +/- k * rolling standard deviation.
// The deviation is the sample estimate (ddof=1), so window must be at least 2;
// the first window-1 positions are undefined.
func Bollinger(values []float64, window int, k float64) Bands {
	mid := SMA(values, window)
	b := Bands{
		Mid:   mid,
		Upper: undefinedSeries(len(values)),
		Lower: undefinedSeries(len(values)),
	}
	if window < 2 {
		return b
	}
	for i := window - 1; i < len(values); i++ {
		if math.IsNaN(mid[i]) {
			continue
		}
		sd := sampleStdDev(values[i-window+1:i+1], mid[i])
		b.Upper[i] = mid[i] + k*sd
		b.Lower[i] = mid[i] - k*sd
	}
	return b
}

func sampleStdDev(window []float64, mean float64) float64 {
	ss := 0.0
	for _, v := range window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}
