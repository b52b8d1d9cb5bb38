package calculator

import "math"

// RSI computes the relative strength index from rolling means of gains and
// losses over period close-to-close changes. The first period positions are
// undefined. A window without losses yields 100, a flat window yields 50.
func RSI(values []float64, period int) []float64 {
	out := undefinedSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		switch {
		case math.IsNaN(change):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case change > 0:
			gains[i] = change
		default:
			losses[i] = -change // make positive
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)
	for i := period; i < len(values); i++ {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			continue
		}
		out[i] = rsiFromAverages(g, l)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
