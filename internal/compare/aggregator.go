// Package compare lines up several tickers on a common date axis so that
// differently priced stocks can be charted side by side.
package compare

import (
	"time"

	"github.com/guregu/null/v6"

	"StockAnalyzer/internal/model"
)

// BaseValue is the value every normalized series starts at.
const BaseValue = 100.0

// MinTickers is the smallest number of usable series a comparison accepts.
const MinTickers = 2

// Input is one ticker's data for a comparison.
type Input struct {
	Series     *model.PriceSeries
	Indicators *model.IndicatorSet
}

// Summary is the per-ticker line of the comparison table.
type Summary struct {
	Symbol       string     `json:"symbol"`
	LatestClose  float64    `json:"latest_close"`
	PeriodReturn float64    `json:"period_return"`
	RSI          null.Float `json:"rsi"`
}

// Table is the aggregated comparison. Every series is aligned with Dates.
type Table struct {
	Tickers     []string                `json:"tickers"`
	Dates       []time.Time             `json:"dates"`
	Normalized  map[string]model.Series `json:"normalized"`
	DailyReturn map[string]model.Series `json:"daily_return"`
	Cumulative  map[string]model.Series `json:"cumulative_return"`
	RSI         map[string]model.Series `json:"rsi"`
	Summaries   []Summary               `json:"summaries"`
}

// Aggregate reindexes every input onto the intersection of their dates.
//
// A date is the UTC calendar day of a bar. Rows whose date is missing for any
// ticker are dropped. Close prices are normalized to BaseValue at the first
// shared date. Daily return and RSI come from each ticker's own indicator set,
// which was computed over its full history.
//
// Inputs with no rows are skipped. Fewer than MinTickers remaining, or no
// shared dates, is an InsufficientDataError.
func Aggregate(inputs []Input, rsiName string) (*Table, error) {
	usable := make([]Input, 0, len(inputs))
	seen := make(map[string]bool)
	for _, in := range inputs {
		if in.Series == nil || in.Series.Empty() || in.Indicators == nil || seen[in.Series.Symbol] {
			continue
		}
		seen[in.Series.Symbol] = true
		usable = append(usable, in)
	}
	if len(usable) < MinTickers {
		return nil, &model.InsufficientDataError{Have: len(usable), Need: MinTickers}
	}

	indexes := make([]map[string]int, len(usable))
	for i, in := range usable {
		idx := make(map[string]int, in.Series.Len())
		for row, t := range in.Series.Times() {
			idx[dateKey(t)] = row
		}
		indexes[i] = idx
	}

	var dates []time.Time
	var keys []string
	for _, t := range usable[0].Series.Times() {
		k := dateKey(t)
		if len(keys) > 0 && keys[len(keys)-1] == k {
			continue
		}
		shared := true
		for _, idx := range indexes[1:] {
			if _, ok := idx[k]; !ok {
				shared = false
				break
			}
		}
		if shared {
			keys = append(keys, k)
			dates = append(dates, dayOf(t))
		}
	}
	if len(dates) == 0 {
		return nil, &model.InsufficientDataError{Have: len(usable), Need: MinTickers, Reason: "tickers share no trading dates"}
	}

	table := &Table{
		Dates:       dates,
		Normalized:  make(map[string]model.Series, len(usable)),
		DailyReturn: make(map[string]model.Series, len(usable)),
		Cumulative:  make(map[string]model.Series, len(usable)),
		RSI:         make(map[string]model.Series, len(usable)),
	}

	for i, in := range usable {
		symbol := in.Series.Symbol
		idx := indexes[i]
		n := len(keys)

		norm := model.NewSeries(n)
		cum := model.NewSeries(n)
		ret := model.NewSeries(n)
		rsi := model.NewSeries(n)

		base := in.Series.Bar(idx[keys[0]]).Close
		for j, k := range keys {
			row := idx[k]
			if base != 0 {
				v := in.Series.Bar(row).Close / base * BaseValue
				norm[j] = model.Value(v)
				cum[j] = model.Value(v - BaseValue)
			}
			ret[j] = in.Indicators.At(model.IndicatorReturn, row)
			rsi[j] = in.Indicators.At(rsiName, row)
		}

		table.Tickers = append(table.Tickers, symbol)
		table.Normalized[symbol] = norm
		table.Cumulative[symbol] = cum
		table.DailyReturn[symbol] = ret
		table.RSI[symbol] = rsi

		last := idx[keys[n-1]]
		s := Summary{
			Symbol:      symbol,
			LatestClose: in.Series.Bar(last).Close,
			RSI:         rsi.Last(),
		}
		if c := cum.Last(); c.Valid {
			s.PeriodReturn = c.Float64
		}
		table.Summaries = append(table.Summaries, s)
	}
	return table, nil
}

func dateKey(t time.Time) string { return t.UTC().Format("2006-01-02") }

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
