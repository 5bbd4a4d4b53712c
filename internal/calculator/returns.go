package calculator

import "StockAnalyzer/internal/model"

// DailyReturns computes the percent change from the previous price. Row 0 and
// rows following a zero price are undefined.
func DailyReturns(prices []float64) model.Series {
	out := model.NewSeries(len(prices))
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out[i] = model.Value((prices[i]/prices[i-1] - 1) * 100)
	}
	return out
}
