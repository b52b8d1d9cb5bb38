package notifier

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"sort"
	"strings"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/summary"
)

// TrendWidth is the number of sparkline cells in the summary table.
const TrendWidth = 24

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

var decisionIcon = map[model.Decision]string{
	model.DecisionBuy:     "🟢",
	model.DecisionSell:    "🔴",
	model.DecisionBullish: "📈",
	model.DecisionBearish: "📉",
	model.DecisionHold:    "⚪",
}

// FormatSummary renders the market overview with every strategy's decision.
func FormatSummary(r *summary.Report, lookback model.Lookback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 <b>Market Overview</b> | %s UTC\n\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	if len(r.Rows) == 0 {
		b.WriteString("No assets to show.\n")
	}
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "<b>%s</b>  %s\n", html.EscapeString(row.Asset), formatPrice(row.CurrentPrice))
		changes := make([]string, len(model.ChangeWindows))
		for i, w := range model.ChangeWindows {
			changes[i] = fmt.Sprintf("%s %s", w, formatChange(row, w))
		}
		fmt.Fprintf(&b, "<code>%s</code>\n", strings.Join(changes, "  "))
		fmt.Fprintf(&b, "<code>%s %s</code>\n", lookback, Sparkline(row.Trend, TrendWidth))
		decisions := make([]string, len(model.StrategyNames))
		for i, s := range model.StrategyNames {
			d := row.Decisions[s]
			decisions[i] = fmt.Sprintf("%s %s %s", s, decisionIcon[d], d)
		}
		b.WriteString(strings.Join(decisions, " | "))
		b.WriteString("\n\n")
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "⚠️ No data: %s\n", html.EscapeString(strings.Join(r.Skipped, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAlerts renders the alert digest, or "" when there is nothing to report.
func FormatAlerts(alerts []model.AlertRecord) string {
	if len(alerts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🔔 <b>Alerts</b>\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "• %s\n", html.EscapeString(a.Message))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NoAlerts is the reply when a run produced no alerts.
const NoAlerts = "✅ No strong short-term signals detected."

// FormatSignals lists the decision of the selected strategy for every processed
// asset in configured order.
func FormatSignals(r *summary.Report) string {
	selected := r.Selected()

	var b strings.Builder
	fmt.Fprintf(&b, "🧐 <b>%s strategy</b>\n", r.Strategy)
	n := 0
	for _, a := range r.Assets {
		d, ok := selected[a]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s <b>%s</b>: %s\n", decisionIcon[d], html.EscapeString(a), d)
		n++
	}
	if n == 0 {
		b.WriteString("No assets to show.")
		return b.String()
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatChart renders the latest values of an indicator frame.
func FormatChart(f *model.IndicatorFrame) string {
	var b strings.Builder
	closes := make([]float64, f.Len())
	for i, bar := range f.Series.Bars {
		closes[i] = bar.Close
	}
	last := f.Series.Last()
	fmt.Fprintf(&b, "📈 <b>%s</b> %s | %d bars to %s UTC\n", html.EscapeString(f.Series.Asset),
		f.Series.Timeframe, f.Len(), last.Time.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "<code>%s</code>\n", Sparkline(closes, TrendWidth))
	fmt.Fprintf(&b, "O %s H %s L %s C %s\n", formatNumber(last.Open), formatNumber(last.High),
		formatNumber(last.Low), formatNumber(last.Close))

	windows := make([]int, 0, len(f.MA))
	for w := range f.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		fmt.Fprintf(&b, "MA%d: %s\n", w, formatNumber(model.Latest(f.MA[w])))
	}
	if f.BBMid != nil {
		fmt.Fprintf(&b, "BB: %s / %s / %s\n", formatNumber(model.Latest(f.BBLower)),
			formatNumber(model.Latest(f.BBMid)), formatNumber(model.Latest(f.BBUpper)))
	}
	if f.RSI != nil {
		fmt.Fprintf(&b, "RSI: %s\n", formatNumber(model.Latest(f.RSI)))
	}
	if f.MACD != nil {
		fmt.Fprintf(&b, "MACD: %s signal %s hist %s\n", formatNumber(model.Latest(f.MACD)),
			formatNumber(model.Latest(f.Signal)), formatNumber(model.Latest(f.Histogram)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Sparkline draws values as block characters, resampled to at most width cells.
// Undefined values are drawn as spaces.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = values[i*len(values)/width]
		}
		sampled[width-1] = values[len(values)-1]
		values = sampled
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if model.IsDefined(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	out := make([]rune, len(values))
	for i, v := range values {
		switch {
		case !model.IsDefined(v):
			out[i] = ' '
		case hi == lo:
			out[i] = sparkTicks[len(sparkTicks)/2]
		default:
			out[i] = sparkTicks[int((v-lo)/(hi-lo)*float64(len(sparkTicks)-1)+0.5)]
		}
	}
	return string(out)
}

func formatChange(row model.SummaryRow, w model.ChangeWindow) string {
	v, ok := row.Change(w)
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

func formatPrice(v float64) string {
	return "$" + formatNumber(v)
}

// formatNumber prints v with thousands separators and a precision that fits
// both BTC-sized and sub-dollar prices.
func formatNumber(v float64) string {
	if !model.IsDefined(v) {
		return "n/a"
	}
	prec := 2
	if math.Abs(v) < 1 && v != 0 {
		prec = 4
	}
	s := fmt.Sprintf("%.*f", prec, math.Abs(v))
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// PlainText strips the HTML markup of a formatted message for terminal output.
func PlainText(msg string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(msg, ""))
}
