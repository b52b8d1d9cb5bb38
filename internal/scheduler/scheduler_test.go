package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/summary"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingNotifier) Send(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sent...)
}

func decliningBars(n int, start float64, end time.Time) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := start - float64(i)*0.5
		bars[i] = model.Bar{Time: end.Add(-time.Duration(n-1-i) * time.Hour), Open: p, High: p, Low: p, Close: p, Volume: 1}
	}
	return bars
}

func newTestScheduler(t *testing.T) (*Scheduler, *recordingNotifier) {
	t.Helper()
	end := time.Now().UTC().Truncate(time.Hour)
	src := &collector.MockSource{
		Price: 150,
		Bars:  map[model.Timeframe][]model.Bar{model.Timeframe1h: decliningBars(200, 250, end)},
	}
	provider := collector.NewProvider(collector.NewChain(time.Second, nil, src), collector.ProviderOptions{})
	n := &recordingNotifier{}
	opts := summary.Options{
		Assets:         []model.Asset{{Symbol: "BTC/USDT"}},
		Lookback:       model.Lookback1w,
		ChartTimeframe: model.Timeframe1h,
		Strategy:       model.StrategyShort,
		Indicators:     calculator.AllIndicators(),
	}
	return NewScheduler(context.Background(), summary.New(provider, nil), n, opts), n
}

func TestRefresh_SendsOnlyNewAlerts(t *testing.T) {
	s, n := newTestScheduler(t)
	if s.Last() != nil {
		t.Fatal("expected no report before the first run")
	}

	s.RunNow()
	msgs := n.messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "BTC/USDT Short-Term: oversold") {
		t.Fatalf("expected one oversold digest, got %q", msgs)
	}
	if s.Last() == nil {
		t.Fatal("expected the report to be kept")
	}

	s.RunNow()
	if len(n.messages()) != 1 {
		t.Errorf("a repeated alert must not be sent again, got %d messages", len(n.messages()))
	}
}

func TestHandleCommand(t *testing.T) {
	s, _ := newTestScheduler(t)
	ctx := context.Background()

	tests := []struct {
		command, args, want string
	}{
		{"summary", "", "Market Overview"},
		{"alerts", "", "oversold"},
		{"signals", "", "BTC/USDT</b>: BUY"},
		{"chart", "btc", "<b>BTC/USDT</b> 1h"},
		{"chart", "BTC/USDT", "RSI: 0.00"},
		{"chart", "<doge>", "Unknown asset &lt;doge&gt;"},
		{"start", "", "Available commands"},
	}
	for _, tt := range tests {
		if got := s.HandleCommand(ctx, tt.command, tt.args); !strings.Contains(got, tt.want) {
			t.Errorf("/%s %s: reply missing %q:\n%s", tt.command, tt.args, tt.want, got)
		}
	}
}

func TestRegister(t *testing.T) {
	s, _ := newTestScheduler(t)
	if err := s.Register("0 */5 * * * *"); err != nil {
		t.Errorf("expected a valid six-field cron expression: %v", err)
	}
	if err := s.Register("every five minutes"); err == nil {
		t.Error("expected an error for a malformed cron expression")
	}
}
