package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/model"
)

func seriesOf(closes ...float64) *model.PriceSeries {
	t0 := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return model.NewPriceSeries("TEST", model.Period1Mo, bars, t0)
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		short, long null.Float
		want        model.Trend
	}{
		{null.FloatFrom(11), null.FloatFrom(10), model.TrendUp},
		{null.FloatFrom(9), null.FloatFrom(10), model.TrendDown},
		{null.FloatFrom(10), null.FloatFrom(10), model.TrendFlat},
		{null.Float{}, null.FloatFrom(10), model.TrendUnknown},
		{null.FloatFrom(10), null.Float{}, model.TrendUnknown},
	}
	for _, tt := range tests {
		if got := classifyTrend(tt.short, tt.long); got != tt.want {
			t.Errorf("classifyTrend(%v, %v) = %s, want %s", tt.short, tt.long, got, tt.want)
		}
	}
}

func TestClassifyStrength(t *testing.T) {
	tests := []struct {
		close, short, long float64
		want               model.TrendStrength
	}{
		{12, 11, 10, model.StrengthStrongUp},
		{12, 11, 13, model.StrengthUp},
		{8, 9, 10, model.StrengthStrongDown},
		{8, 9, 7, model.StrengthDown},
		{9, 9, 10, model.StrengthSideways},
	}
	for _, tt := range tests {
		got := classifyStrength(tt.close, null.FloatFrom(tt.short), null.FloatFrom(tt.long))
		if got != tt.want {
			t.Errorf("close=%.0f short=%.0f long=%.0f: got %q, want %q", tt.close, tt.short, tt.long, got, tt.want)
		}
	}
}

func TestClassifyRSI_Boundaries(t *testing.T) {
	tests := []struct {
		rsi  null.Float
		want model.RSIZone
	}{
		{null.FloatFrom(85), model.ZoneOverbought},
		{null.FloatFrom(70.01), model.ZoneOverbought},
		{null.FloatFrom(70), model.ZoneNeutral},
		{null.FloatFrom(50), model.ZoneNeutral},
		{null.FloatFrom(30), model.ZoneNeutral},
		{null.FloatFrom(29.99), model.ZoneOversold},
		{null.Float{}, model.ZoneUnknown},
	}
	for _, tt := range tests {
		if got := classifyRSI(tt.rsi); got != tt.want {
			t.Errorf("rsi %v: got %s, want %s", tt.rsi, got, tt.want)
		}
	}
}

func TestClassifyCrossover(t *testing.T) {
	v := model.Value
	tests := []struct {
		name   string
		macd   model.Series
		signal model.Series
		want   model.Crossover
	}{
		{"upward cross", model.Series{v(-1), v(1)}, model.Series{v(0), v(0)}, model.CrossBullish},
		{"touch then above", model.Series{v(0), v(1)}, model.Series{v(0), v(0)}, model.CrossBullish},
		{"downward cross", model.Series{v(1), v(-1)}, model.Series{v(0), v(0)}, model.CrossBearish},
		{"stays above", model.Series{v(1), v(2)}, model.Series{v(0), v(0)}, model.CrossNone},
		{"stays below", model.Series{v(-2), v(-1)}, model.Series{v(0), v(0)}, model.CrossNone},
		{"single row", model.Series{v(1)}, model.Series{v(0)}, model.CrossNone},
		{"undefined prior", model.Series{{}, v(1)}, model.Series{{}, v(0)}, model.CrossNone},
	}
	for _, tt := range tests {
		if got := classifyCrossover(tt.macd, tt.signal); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestEvaluate_Uptrend(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := seriesOf(closes...)
	p := calculator.DefaultParams()
	set, err := calculator.Compute(series, p)
	if err != nil {
		t.Fatal(err)
	}
	a := Evaluate(series, set, p)
	if a.Trend != model.TrendUp {
		t.Errorf("expected up trend, got %s", a.Trend)
	}
	if a.Strength != model.StrengthStrongUp {
		t.Errorf("expected strong uptrend, got %s", a.Strength)
	}
	if a.RSIZone != model.ZoneOverbought {
		t.Errorf("expected overbought for monotonic rise, got %s", a.RSIZone)
	}
	if a.Stats.LatestClose != 139 || a.Stats.Rows != 40 {
		t.Errorf("unexpected stats: %+v", a.Stats)
	}
	if math.Abs(a.Stats.PeriodReturn-39) > 1e-9 {
		t.Errorf("expected 39%% period return, got %.4f", a.Stats.PeriodReturn)
	}
	if _, ok := a.Latest["sma_60"]; !ok {
		t.Error("expected latest map to include sma_60")
	}
	if a.Latest["sma_60"].Valid {
		t.Error("sma_60 should be undefined for 40 rows")
	}
}

func TestEvaluate_ShortSeries(t *testing.T) {
	series := seriesOf(10, 11)
	p := calculator.DefaultParams()
	set, err := calculator.Compute(series, p)
	if err != nil {
		t.Fatal(err)
	}
	a := Evaluate(series, set, p)
	if a.Trend != model.TrendUnknown || a.RSIZone != model.ZoneUnknown || a.Crossover != model.CrossNone {
		t.Errorf("expected unknown readings, got %s/%s/%s", a.Trend, a.RSIZone, a.Crossover)
	}
	if a.Stats.Change != 1 {
		t.Errorf("expected change 1, got %.2f", a.Stats.Change)
	}
}
