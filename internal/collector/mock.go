package collector

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sync/atomic"
	"time"

	"StockAnalyzer/internal/model"
)

// MockFetcher returns deterministic synthetic bars for development, tests
// and offline dashboards.
type MockFetcher struct {
	// End is the date of the last generated bar. Zero means today (UTC).
	End time.Time
	// Bars overrides generation for specific symbols.
	Bars map[string][]model.OHLCV
	// Unknown symbols fail with InvalidTickerError.
	Unknown map[string]bool

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchHistory has been invoked.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls.Add(1)
	if m.Unknown[symbol] {
		return nil, &model.InvalidTickerError{Symbol: symbol, Err: errors.New("mock: unknown symbol")}
	}
	if bars, ok := m.Bars[symbol]; ok {
		return bars, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	return GenerateBars(symbol, period.TradingDays(), end), nil
}

// GenerateBars builds count weekday bars ending on end. The price path is a
// drift plus two sine waves whose phase and base level depend on the symbol,
// so the same inputs always give the same bars.
func GenerateBars(symbol string, count int, end time.Time) []model.OHLCV {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	seed := h.Sum32()
	base := 20 + float64(seed%480)
	phase := float64(seed%360) * math.Pi / 180
	drift := (float64(seed%7) - 3) * 0.0003

	day := time.Date(end.Year(), end.Month(), end.Day(), 14, 30, 0, 0, time.UTC)
	days := make([]time.Time, 0, count)
	for len(days) < count {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, day)
		}
		day = day.AddDate(0, 0, -1)
	}

	bars := make([]model.OHLCV, count)
	for i := range count {
		x := float64(i)
		p := base * math.Exp(drift*x) * (1 + 0.05*math.Sin(x/9+phase) + 0.015*math.Sin(x/2.3))
		open := p * (1 - 0.004*math.Cos(x+phase))
		bars[i] = model.OHLCV{
			Time:   days[count-1-i],
			Open:   open,
			High:   math.Max(open, p) * 1.006,
			Low:    math.Min(open, p) * 0.994,
			Close:  p,
			Volume: math.Round(1e6 * (1.5 + math.Sin(x/5+phase))),
		}
	}
	return bars
}
