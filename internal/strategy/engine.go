package strategy

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// Result is the outcome of one strategy for one asset.
type Result struct {
	Asset    string
	Strategy model.StrategyName
	Decision model.Decision
	Rule     string
	Alert    *model.AlertRecord
	Frame    *model.IndicatorFrame // nil when the series was empty
}

// Strategy turns the latest bar of a dedicated indicator frame into a decision.
type Strategy interface {
	Name() model.StrategyName
	Timeframe() model.Timeframe
	Limit() int
	Evaluate(asset string, series model.Series) Result
}

type tableStrategy[R any] struct {
	name      model.StrategyName
	timeframe model.Timeframe
	limit     int
	frame     calculator.FrameOptions
	row       func(f *model.IndicatorFrame) (R, bool)
	table     Table[R]
}

func (s *tableStrategy[R]) Name() model.StrategyName   { return s.name }
func (s *tableStrategy[R]) Timeframe() model.Timeframe { return s.timeframe }
func (s *tableStrategy[R]) Limit() int                 { return s.limit }

// Evaluate builds the frame and runs the table on its latest row. Missing data
// or any undefined latest value resolves to HOLD.
func (s *tableStrategy[R]) Evaluate(asset string, series model.Series) Result {
	res := Result{Asset: asset, Strategy: s.name, Decision: model.DecisionHold, Rule: "no data"}
	if series.Empty() {
		return res
	}
	res.Frame = calculator.BuildFrame(series, s.frame)
	row, ok := s.row(res.Frame)
	if !ok {
		res.Rule = "insufficient history"
		return res
	}
	_, rule := s.table.Evaluate(row)
	res.Decision, res.Rule = rule.Outcome, rule.Name
	if rule.Alert != nil {
		res.Alert = &model.AlertRecord{Asset: asset, Strategy: s.name, Message: rule.Alert(asset, row)}
	}
	return res
}

// Short is mean reversion on 60 hourly bars with RSI-14 and 20-period Bollinger bands.
func Short() Strategy {
	return &tableStrategy[ShortRow]{
		name:      model.StrategyShort,
		timeframe: model.Timeframe1h,
		limit:     60,
		frame:     calculator.FrameOptions{RSI: true, Bollinger: true},
		row: func(f *model.IndicatorFrame) (ShortRow, bool) {
			r := ShortRow{
				Close: f.LastClose(),
				RSI:   model.Latest(f.RSI),
				Upper: model.Latest(f.BBUpper),
				Lower: model.Latest(f.BBLower),
			}
			return r, allDefined(r.Close, r.RSI, r.Upper, r.Lower)
		},
		table: ShortRules,
	}
}

// Long is trend following on 300 daily bars with the 50 and 200 period averages.
func Long() Strategy {
	return &tableStrategy[LongRow]{
		name:      model.StrategyLong,
		timeframe: model.Timeframe1d,
		limit:     300,
		frame:     calculator.FrameOptions{MA: []int{50, 200}},
		row: func(f *model.IndicatorFrame) (LongRow, bool) {
			r := LongRow{
				Close: f.LastClose(),
				MA50:  model.Latest(f.MA[50]),
				MA200: model.Latest(f.MA[200]),
			}
			return r, allDefined(r.Close, r.MA50, r.MA200)
		},
		table: LongRules,
	}
}

// Income is momentum on 120 four-hour bars with MACD and MA20.
func Income() Strategy {
	return &tableStrategy[IncomeRow]{
		name:      model.StrategyIncome,
		timeframe: model.Timeframe4h,
		limit:     120,
		frame:     calculator.FrameOptions{MACD: true, MA: []int{20}},
		row: func(f *model.IndicatorFrame) (IncomeRow, bool) {
			r := IncomeRow{
				Close:  f.LastClose(),
				MACD:   model.Latest(f.MACD),
				Signal: model.Latest(f.Signal),
				MA20:   model.Latest(f.MA[20]),
			}
			return r, allDefined(r.Close, r.MACD, r.Signal, r.MA20)
		},
		table: IncomeRules,
	}
}

// All returns the built-in strategies in display order.
func All() []Strategy {
	return []Strategy{Short(), Long(), Income()}
}

func allDefined(vals ...float64) bool {
	for _, v := range vals {
		if !model.IsDefined(v) {
			return false
		}
	}
	return true
}
