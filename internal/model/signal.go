package model

import "fmt"

// Decision is the discrete trading call of one strategy for one asset.
type Decision string

const (
	DecisionBuy     Decision = "BUY"
	DecisionSell    Decision = "SELL"
	DecisionHold    Decision = "HOLD"
	DecisionBullish Decision = "BULLISH"
	DecisionBearish Decision = "BEARISH"
)

// StrategyName identifies one of the built-in strategies.
type StrategyName string

const (
	StrategyShort  StrategyName = "Short"
	StrategyLong   StrategyName = "Long"
	StrategyIncome StrategyName = "Income"
)

// StrategyNames lists the strategies in display order.
var StrategyNames = []StrategyName{StrategyShort, StrategyLong, StrategyIncome}

// ParseStrategyName validates a strategy name.
func ParseStrategyName(s string) (StrategyName, error) {
	switch n := StrategyName(s); n {
	case StrategyShort, StrategyLong, StrategyIncome:
		return n, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// AlertRecord is emitted by the Short strategy's extreme-condition branches.
type AlertRecord struct {
	Asset    string       `json:"asset"`
	Strategy StrategyName `json:"strategy"`
	Message  string       `json:"message"`
}

// SummaryRow is the per-asset output of one batch run.
// A window missing from Changes means no bar exists at or after its cutoff.
type SummaryRow struct {
	Asset        string                    `json:"asset"`
	CurrentPrice float64                   `json:"current_price"`
	Changes      map[ChangeWindow]float64  `json:"changes"`
	Trend        []float64                 `json:"trend"`
	Decisions    map[StrategyName]Decision `json:"decisions"`
}

// Change returns the percent change for w and whether it is available.
func (r SummaryRow) Change(w ChangeWindow) (float64, bool) {
	v, ok := r.Changes[w]
	return v, ok
}

// HasSignal reports whether any strategy produced something other than HOLD.
func (r SummaryRow) HasSignal() bool {
	for _, d := range r.Decisions {
		if d != DecisionHold {
			return true
		}
	}
	return false
}
