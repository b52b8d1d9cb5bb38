package strategy

import "SignalSentinel/internal/model"

// Rule maps a predicate over a strategy row to a decision.
// A nil When always matches. Alert, when set, builds the alert message.
type Rule[R any] struct {
	Name    string
	When    func(R) bool
	Outcome model.Decision
	Alert   func(asset string, row R) string
}

// Table is an ordered decision table: the first matching rule wins and the
// rules after it are not evaluated.
type Table[R any] []Rule[R]

// Evaluate returns the index and rule of the first match. A table without a
// match yields index -1 and a HOLD rule.
func (t Table[R]) Evaluate(row R) (int, Rule[R]) {
	for i, r := range t {
		if r.When == nil || r.When(row) {
			return i, r
		}
	}
	return -1, Rule[R]{Name: "no match", Outcome: model.DecisionHold}
}
