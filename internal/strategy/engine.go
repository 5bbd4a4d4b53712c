package strategy

import (
	"github.com/guregu/null/v6"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/model"
)

// Evaluate reads the latest row of an indicator set and produces the
// rule-based classifications used by the report. Inputs are not modified.
func Evaluate(series *model.PriceSeries, set *model.IndicatorSet, p calculator.Params) *model.Analysis {
	a := &model.Analysis{
		Symbol:    series.Symbol,
		Period:    series.Period,
		ShortSMA:  p.ShortSMA(),
		LongSMA:   p.LongSMA(),
		RSIName:   calculator.RSIName(p.RSIWindow),
		VolName:   calculator.VolatilityName(p.VolatilityWindow),
		Latest:    make(map[string]null.Float),
		Trend:     model.TrendUnknown,
		Strength:  model.StrengthUnknown,
		RSIZone:   model.ZoneUnknown,
		Crossover: model.CrossNone,
		MACDBias:  model.CrossNone,
	}
	if series.Empty() {
		return a
	}

	for _, name := range set.Names() {
		a.Latest[name] = set.Latest(name)
	}
	a.Stats = computeStats(series)

	short := set.Latest(a.ShortSMA)
	long := set.Latest(a.LongSMA)
	a.Trend = classifyTrend(short, long)
	a.Strength = classifyStrength(a.Stats.LatestClose, short, long)
	a.RSIZone = classifyRSI(set.Latest(a.RSIName))

	macd, _ := set.Get(model.IndicatorMACD)
	signal, _ := set.Get(model.IndicatorMACDSignal)
	a.Crossover = classifyCrossover(macd, signal)
	a.MACDBias = classifyBias(macd.Last(), signal.Last())

	return a
}

func computeStats(series *model.PriceSeries) model.Stats {
	bars := series.Bars()
	first := bars[0].Close
	latest := bars[len(bars)-1].Close
	prev := latest
	if len(bars) > 1 {
		prev = bars[len(bars)-2].Close
	}

	st := model.Stats{
		LatestClose: latest,
		PrevClose:   prev,
		Change:      latest - prev,
		AvgVolume:   calculator.AverageVolume(bars),
		Rows:        len(bars),
	}
	if prev != 0 {
		st.ChangePct = st.Change / prev * 100
	}
	if first != 0 {
		st.PeriodReturn = (latest/first - 1) * 100
	}
	if h, l, err := calculator.PeriodRange(bars); err == nil {
		st.High, st.Low = h, l
	}
	return st
}
