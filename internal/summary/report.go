package summary

import (
	"time"

	"SignalSentinel/internal/model"
)

// Report is the output of one batch run.
type Report struct {
	RunID       string                                           `json:"run_id"`
	GeneratedAt time.Time                                        `json:"generated_at"`
	Strategy    model.StrategyName                               `json:"strategy"` // selected for single-strategy display
	Rows        []model.SummaryRow                               `json:"rows"`     // filtered when alerts-only is set
	Assets      []string                                         `json:"assets"`   // processed assets in configured order
	Alerts      []model.AlertRecord                              `json:"alerts"`
	Decisions   map[string]map[model.StrategyName]model.Decision `json:"decisions"` // every processed asset
	Skipped     []string                                         `json:"skipped"`
}

// Decision returns the decision of strategy s for asset.
func (r *Report) Decision(asset string, s model.StrategyName) (model.Decision, bool) {
	d, ok := r.Decisions[asset][s]
	return d, ok
}

// Selected returns the decision of the selected strategy per asset.
func (r *Report) Selected() map[string]model.Decision {
	out := make(map[string]model.Decision, len(r.Decisions))
	for asset, ds := range r.Decisions {
		if d, ok := ds[r.Strategy]; ok {
			out[asset] = d
		}
	}
	return out
}
