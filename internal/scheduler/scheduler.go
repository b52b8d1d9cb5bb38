package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/summary"
)

// Scheduler runs the batch on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Aggregator *summary.Aggregator
	Notifier   notifier.Notifier
	Options    summary.Options
	Ctx        context.Context

	mu       sync.Mutex
	last     *summary.Report
	notified map[string]bool // alert keys of the previous run
}

// NewScheduler creates a new Scheduler. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, agg *summary.Aggregator, n notifier.Notifier, opts summary.Options) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(logger.Cron()),
			cron.WithChain(cron.Recover(logger.Cron()), cron.SkipIfStillRunning(logger.Cron())),
		),
		Aggregator: agg,
		Notifier:   n,
		Options:    opts,
		Ctx:        ctx,
		notified:   make(map[string]bool),
	}
}

// Register adds the refresh job.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refresh); err != nil {
		return errors.Wrap(err, "register refresh task")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Infof("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Infof("scheduler stopped")
}

// RunNow executes the refresh immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refresh()
}

// Last returns the most recent report, or nil before the first run.
func (s *Scheduler) Last() *summary.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Scheduler) refresh() {
	logger.Infof("running refresh for %d assets", len(s.Options.Assets))
	report := s.Aggregator.Run(s.Ctx, s.Options)

	fresh := s.record(report)
	for _, row := range report.Rows {
		logger.Infof("%s $%.2f short=%s long=%s income=%s", row.Asset, row.CurrentPrice,
			row.Decisions[model.StrategyShort], row.Decisions[model.StrategyLong], row.Decisions[model.StrategyIncome])
	}
	if msg := notifier.FormatAlerts(fresh); msg != "" {
		s.trySend(msg)
	}
}

// record stores the report and returns the alerts that did not fire on the
// previous run.
func (s *Scheduler) record(report *summary.Report) []model.AlertRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []model.AlertRecord
	keys := make(map[string]bool, len(report.Alerts))
	for _, a := range report.Alerts {
		d, _ := report.Decision(a.Asset, a.Strategy)
		key := fmt.Sprintf("%s|%s|%s", a.Asset, a.Strategy, d)
		keys[key] = true
		if !s.notified[key] {
			fresh = append(fresh, a)
		}
	}
	s.last = report
	s.notified = keys
	return fresh
}

// latest returns the cached report, running the batch when none exists yet.
func (s *Scheduler) latest(ctx context.Context) *summary.Report {
	if r := s.Last(); r != nil {
		return r
	}
	report := s.Aggregator.Run(ctx, s.Options)
	s.record(report)
	return report
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command, args string) string {
	switch command {
	case "summary":
		return notifier.FormatSummary(s.latest(ctx), s.Options.Lookback)
	case "alerts":
		if msg := notifier.FormatAlerts(s.latest(ctx).Alerts); msg != "" {
			return msg
		}
		return notifier.NoAlerts
	case "signals":
		return notifier.FormatSignals(s.latest(ctx))
	case "refresh":
		s.refresh()
		return notifier.FormatSummary(s.Last(), s.Options.Lookback)
	case "chart":
		return s.chart(ctx, args)
	default:
		return "Available commands:\n" +
			"/summary - market overview\n" +
			"/alerts - current alerts\n" +
			"/signals - selected strategy decisions\n" +
			"/chart &lt;symbol&gt; - latest indicator values\n" +
			"/refresh - run the batch now"
	}
}

func (s *Scheduler) chart(ctx context.Context, symbol string) string {
	asset, ok := s.findAsset(symbol)
	if !ok {
		return fmt.Sprintf("Unknown asset %s. Watching: %s", html.EscapeString(symbol), s.symbols())
	}
	frame, ok := s.Aggregator.Chart(ctx, asset, s.Options.ChartTimeframe, s.Options.Indicators)
	if !ok {
		return fmt.Sprintf("No data for %s right now.", asset)
	}
	return notifier.FormatChart(frame)
}

func (s *Scheduler) findAsset(symbol string) (model.Asset, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, a := range s.Options.Assets {
		base, _, _ := strings.Cut(a.Symbol, "/")
		if a.Symbol == symbol || base == symbol {
			return a, true
		}
	}
	return model.Asset{}, false
}

func (s *Scheduler) symbols() string {
	out := make([]string, len(s.Options.Assets))
	for i, a := range s.Options.Assets {
		out[i] = a.Symbol
	}
	return strings.Join(out, ", ")
}

func (s *Scheduler) trySend(text string) {
	if err := notifier.SendWithRetry(s.Ctx, s.Notifier, text, 3); err != nil {
		logger.Errorf("send notification: %v", err)
	}
}
