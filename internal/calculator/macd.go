package calculator

import "StockAnalyzer/internal/model"

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      model.Series
	Signal    model.Series
	Histogram model.Series
}

// MACD computes EMA(fast) - EMA(slow), its EMA(signal) and the difference of
// the two. A series shorter than the slow window leaves all three undefined.
func MACD(prices []float64, fast, slow, signal int) MACDResult {
	n := len(prices)
	res := MACDResult{
		MACD:      model.NewSeries(n),
		Signal:    model.NewSeries(n),
		Histogram: model.NewSeries(n),
	}
	if n < slow || fast <= 0 || signal <= 0 {
		return res
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)
	line := make([]float64, n)
	for i := range prices {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMA(line, signal)

	for i := range prices {
		res.MACD[i] = model.Value(line[i])
		res.Signal[i] = model.Value(sig[i])
		res.Histogram[i] = model.Value(line[i] - sig[i])
	}
	return res
}
