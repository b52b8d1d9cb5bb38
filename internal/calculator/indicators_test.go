package calculator

import (
	"math"
	"testing"
	"time"

	"SignalSentinel/internal/model"
)

func zigzag(n int) []float64 {
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		switch i % 5 {
		case 0, 1, 3:
			p += float64(i%7) + 0.5
		default:
			p -= float64(i%4) + 1.25
		}
		out[i] = p
	}
	return out
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSMA_AlignedWithUndefinedWarmup(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if len(got) != 5 {
		t.Fatalf("expected length 5, got %d", len(got))
	}
	for i := 0; i < 2; i++ {
		if model.IsDefined(got[i]) {
			t.Errorf("position %d: expected undefined, got %v", i, got[i])
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w) {
			t.Errorf("position %d: expected %v, got %v", i+2, w, got[i+2])
		}
	}
}

func TestSMA_WindowLongerThanSeries(t *testing.T) {
	for i, v := range SMA([]float64{1, 2}, 200) {
		if model.IsDefined(v) {
			t.Errorf("position %d: expected undefined, got %v", i, v)
		}
	}
}

func TestEMA_SeededByFirstValue(t *testing.T) {
	got := EMA([]float64{10, 20, 20}, 3) // alpha = 0.5
	want := []float64{10, 15, 17.5}
	for i, w := range want {
		if !almostEqual(got[i], w) {
			t.Errorf("position %d: expected %v, got %v", i, w, got[i])
		}
	}
}

func TestRSI_BoundedWhereDefined(t *testing.T) {
	closes := zigzag(200)
	rsi := RSI(closes, 14)
	if len(rsi) != len(closes) {
		t.Fatalf("expected length %d, got %d", len(closes), len(rsi))
	}
	for i := 0; i < 14; i++ {
		if model.IsDefined(rsi[i]) {
			t.Errorf("position %d: expected undefined during warm-up, got %v", i, rsi[i])
		}
	}
	for i := 14; i < len(rsi); i++ {
		if !model.IsDefined(rsi[i]) {
			t.Fatalf("position %d: expected defined value", i)
		}
		if rsi[i] < 0 || rsi[i] > 100 {
			t.Errorf("position %d: RSI %v out of [0,100]", i, rsi[i])
		}
	}
}

func TestRSI_EdgeCases(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{"all gains", []float64{1, 2, 3, 4, 5, 6}, 100},
		{"flat", []float64{5, 5, 5, 5, 5, 5}, 50},
		{"all losses", []float64{6, 5, 4, 3, 2, 1}, 0},
		// gains 2+2=4, losses 1+1=2 over 4 changes -> rs 2 -> 66.67
		{"mixed", []float64{10, 12, 11, 13, 12}, 100 - 100/3.0},
	}
	for _, tt := range tests {
		rsi := RSI(tt.closes, 4)
		got := model.Latest(rsi)
		if !almostEqual(got, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestRSI_InsufficientHistory(t *testing.T) {
	rsi := RSI([]float64{1, 2, 3}, 14)
	if len(rsi) != 3 {
		t.Fatalf("expected length 3, got %d", len(rsi))
	}
	if model.IsDefined(model.Latest(rsi)) {
		t.Error("expected undefined RSI with insufficient history")
	}
}

func TestMACD_HistogramIsDifference(t *testing.T) {
	m := MACD(zigzag(150), 12, 26, 9)
	for i := range m.MACD {
		if !model.IsDefined(m.MACD[i]) || !model.IsDefined(m.Signal[i]) {
			t.Fatalf("position %d: expected defined MACD and signal", i)
		}
		if m.Histogram[i] != m.MACD[i]-m.Signal[i] {
			t.Errorf("position %d: histogram %v != %v - %v", i, m.Histogram[i], m.MACD[i], m.Signal[i])
		}
	}
	if m.MACD[0] != 0 {
		t.Errorf("expected MACD 0 at the seed position, got %v", m.MACD[0])
	}
}

func TestBollinger_Ordering(t *testing.T) {
	closes := zigzag(120)
	b := Bollinger(closes, 20, 2)
	for i := 0; i < 19; i++ {
		if model.IsDefined(b.Upper[i]) || model.IsDefined(b.Mid[i]) || model.IsDefined(b.Lower[i]) {
			t.Errorf("position %d: expected undefined bands", i)
		}
	}
	for i := 19; i < len(closes); i++ {
		if !(b.Upper[i] >= b.Mid[i] && b.Mid[i] >= b.Lower[i]) {
			t.Errorf("position %d: expected upper >= mid >= lower, got %v %v %v", i, b.Upper[i], b.Mid[i], b.Lower[i])
		}
	}
}

func TestBollinger_SampleStdDev(t *testing.T) {
	// mean 5, sample variance 32/7 for the classic 2,4,4,4,5,5,7,9 set
	b := Bollinger([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8, 1)
	sd := math.Sqrt(32.0 / 7.0)
	if !almostEqual(model.Latest(b.Mid), 5) {
		t.Errorf("expected mid 5, got %v", model.Latest(b.Mid))
	}
	if !almostEqual(model.Latest(b.Upper), 5+sd) {
		t.Errorf("expected upper %v, got %v", 5+sd, model.Latest(b.Upper))
	}
	if !almostEqual(model.Latest(b.Lower), 5-sd) {
		t.Errorf("expected lower %v, got %v", 5-sd, model.Latest(b.Lower))
	}
}

func TestBuildFrame_OnlyRequestedColumns(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := zigzag(60)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: base.Add(time.Duration(i) * time.Hour), Open: c, High: c, Low: c, Close: c}
	}
	f := BuildFrame(model.Series{Asset: "BTC/USDT", Bars: bars}, FrameOptions{RSI: true, MA: []int{20}})
	if len(f.RSI) != 60 || len(f.MA[20]) != 60 {
		t.Fatalf("expected RSI and MA20 of length 60, got %d and %d", len(f.RSI), len(f.MA[20]))
	}
	if f.MACD != nil || f.BBUpper != nil {
		t.Error("expected MACD and Bollinger columns to be absent")
	}
	if f.LastClose() != closes[59] {
		t.Errorf("expected last close %v, got %v", closes[59], f.LastClose())
	}
}

func TestPercentChange(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []model.Bar{
		{Time: base, Close: 90},
		{Time: base.Add(time.Hour), Close: 100},
		{Time: base.Add(25 * time.Hour), Close: 105},
	}
	last := bars[len(bars)-1].Time

	got, ok := PercentChange(110, bars, last.Add(-24*time.Hour))
	if !ok {
		t.Fatal("expected 1d change to be available")
	}
	if !almostEqual(got, 10) {
		t.Errorf("expected +10.00, got %.2f", got)
	}

	if _, ok := PercentChange(110, bars, last.Add(time.Hour)); ok {
		t.Error("expected change to be unavailable when no bar follows the cutoff")
	}
	if n := len(TrimSince(bars, base.Add(time.Minute))); n != 2 {
		t.Errorf("expected 2 bars after trim, got %d", n)
	}
}
