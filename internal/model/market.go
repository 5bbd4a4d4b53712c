package model

import (
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time" parquet:"time,timestamp"`
	Open   float64   `json:"open" parquet:"open"`
	High   float64   `json:"high" parquet:"high"`
	Low    float64   `json:"low" parquet:"low"`
	Close  float64   `json:"close" parquet:"close"`
	Volume float64   `json:"volume" parquet:"volume"`
}

// PriceSeries holds one ticker's bars for one period, ascending by time.
// It is never modified after NewPriceSeries returns.
type PriceSeries struct {
	Symbol    string
	Period    Period
	FetchedAt time.Time
	bars      []OHLCV
}

// NewPriceSeries copies bars, sorts them by time and drops duplicate timestamps
// (the later bar wins).
func NewPriceSeries(symbol string, period Period, bars []OHLCV, fetchedAt time.Time) *PriceSeries {
	sorted := make([]OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return &PriceSeries{Symbol: symbol, Period: period, FetchedAt: fetchedAt, bars: out}
}

func (s *PriceSeries) Len() int { return len(s.bars) }

func (s *PriceSeries) Empty() bool { return len(s.bars) == 0 }

// Bar returns the i-th bar.
func (s *PriceSeries) Bar(i int) OHLCV { return s.bars[i] }

// Bars returns a copy of all bars.
func (s *PriceSeries) Bars() []OHLCV {
	out := make([]OHLCV, len(s.bars))
	copy(out, s.bars)
	return out
}

// Last returns the most recent bar. The series must not be empty.
func (s *PriceSeries) Last() OHLCV { return s.bars[len(s.bars)-1] }

func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Volume
	}
	return out
}

func (s *PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Time
	}
	return out
}
