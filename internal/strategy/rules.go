package strategy

import (
	"fmt"

	"SignalSentinel/internal/model"
)

// RSI thresholds of the Short strategy.
const (
	RSIOversold   = 30.0
	RSIOverbought = 70.0
)

// ShortRow is the latest row of the Short frame.
type ShortRow struct {
	Close float64
	RSI   float64
	Upper float64
	Lower float64
}

// LongRow is the latest row of the Long frame.
type LongRow struct {
	Close float64
	MA50  float64
	MA200 float64
}

// IncomeRow is the latest row of the Income frame.
type IncomeRow struct {
	Close  float64
	MACD   float64
	Signal float64
	MA20   float64
}

// ShortRules is the mean-reversion table.
var ShortRules = Table[ShortRow]{
	{
		Name:    "oversold",
		When:    func(r ShortRow) bool { return r.RSI < RSIOversold || r.Close < r.Lower },
		Outcome: model.DecisionBuy,
		Alert: func(asset string, r ShortRow) string {
			return fmt.Sprintf("%s Short-Term: oversold (RSI %.1f)", asset, r.RSI)
		},
	},
	{
		Name:    "overbought",
		When:    func(r ShortRow) bool { return r.RSI > RSIOverbought || r.Close > r.Upper },
		Outcome: model.DecisionSell,
		Alert: func(asset string, r ShortRow) string {
			return fmt.Sprintf("%s Short-Term: overbought (RSI %.1f)", asset, r.RSI)
		},
	},
	{Name: "neutral", Outcome: model.DecisionHold},
}

// LongRules is the trend table over the 50/200 moving averages.
var LongRules = Table[LongRow]{
	{
		Name:    "uptrend confirmed",
		When:    func(r LongRow) bool { return r.MA50 > r.MA200 && r.Close > r.MA200 },
		Outcome: model.DecisionBuy,
	},
	{
		Name:    "downtrend confirmed",
		When:    func(r LongRow) bool { return r.MA50 < r.MA200 && r.Close < r.MA200 },
		Outcome: model.DecisionSell,
	},
	{Name: "golden alignment", When: func(r LongRow) bool { return r.MA50 > r.MA200 }, Outcome: model.DecisionBullish},
	{Name: "death alignment", When: func(r LongRow) bool { return r.MA50 < r.MA200 }, Outcome: model.DecisionBearish},
	{Name: "averages equal", Outcome: model.DecisionHold},
}

// IncomeRules is the momentum table over MACD and MA20.
var IncomeRules = Table[IncomeRow]{
	{
		Name:    "momentum up",
		When:    func(r IncomeRow) bool { return r.MACD > r.Signal && r.Close > r.MA20 },
		Outcome: model.DecisionBuy,
	},
	{
		Name:    "momentum down",
		When:    func(r IncomeRow) bool { return r.MACD < r.Signal && r.Close < r.MA20 },
		Outcome: model.DecisionSell,
	},
	{Name: "macd above signal", When: func(r IncomeRow) bool { return r.MACD > r.Signal }, Outcome: model.DecisionBullish},
	{Name: "macd below signal", When: func(r IncomeRow) bool { return r.MACD < r.Signal }, Outcome: model.DecisionBearish},
	{Name: "macd equals signal", Outcome: model.DecisionHold},
}
