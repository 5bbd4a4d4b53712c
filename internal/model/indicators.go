package model

import (
	"math"

	"github.com/guregu/null/v6"
)

// Indicator names used as IndicatorSet keys.
const (
	IndicatorMACD       = "macd"
	IndicatorMACDSignal = "macd_signal"
	IndicatorMACDHist   = "macd_hist"
	IndicatorBBUpper    = "bb_upper"
	IndicatorBBMiddle   = "bb_middle"
	IndicatorBBLower    = "bb_lower"
	IndicatorReturn     = "daily_return"
	IndicatorVolume     = "volume"
)

// Series is an indicator column aligned with a PriceSeries. An invalid
// element means "no value" and must never be read as zero.
type Series []null.Float

// NewSeries returns n undefined values.
func NewSeries(n int) Series { return make(Series, n) }

// Value wraps f as a defined element. Non-finite values become undefined.
func Value(f float64) null.Float {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return null.Float{}
	}
	return null.FloatFrom(f)
}

// Defined counts the elements that carry a value.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.Valid {
			n++
		}
	}
	return n
}

// Last returns the final element, undefined for an empty series.
func (s Series) Last() null.Float {
	if len(s) == 0 {
		return null.Float{}
	}
	return s[len(s)-1]
}

// At returns the i-th element, undefined when i is out of range.
func (s Series) At(i int) null.Float {
	if i < 0 || i >= len(s) {
		return null.Float{}
	}
	return s[i]
}

// Floats returns the raw values with NaN in undefined slots, for renderers.
func (s Series) Floats() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.Valid {
			out[i] = v.Float64
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// IndicatorSet maps indicator names to series aligned index-for-index with
// the PriceSeries they were derived from.
type IndicatorSet struct {
	rows   int
	order  []string
	series map[string]Series
}

func NewIndicatorSet(rows int) *IndicatorSet {
	return &IndicatorSet{rows: rows, series: make(map[string]Series)}
}

// Put stores a series under name. It panics on a length mismatch since that
// is always a programming error.
func (s *IndicatorSet) Put(name string, values Series) {
	if len(values) != s.rows {
		panic("model: series " + name + " length does not match indicator set")
	}
	if _, ok := s.series[name]; !ok {
		s.order = append(s.order, name)
	}
	s.series[name] = values
}

// Rows is the row count shared by every series.
func (s *IndicatorSet) Rows() int { return s.rows }

// Names returns indicator names in insertion order.
func (s *IndicatorSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns a copy of the named series.
func (s *IndicatorSet) Get(name string) (Series, bool) {
	v, ok := s.series[name]
	if !ok {
		return nil, false
	}
	out := make(Series, len(v))
	copy(out, v)
	return out, true
}

// At returns the named indicator at row i; undefined when either is missing.
func (s *IndicatorSet) At(name string, i int) null.Float {
	return s.series[name].At(i)
}

// Latest returns the named indicator at the last row.
func (s *IndicatorSet) Latest(name string) null.Float {
	return s.series[name].Last()
}

// Map exposes the series keyed by name, for encoders.
func (s *IndicatorSet) Map() map[string]Series {
	out := make(map[string]Series, len(s.series))
	for k, v := range s.series {
		out[k] = v
	}
	return out
}
