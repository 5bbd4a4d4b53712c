package calculator

import "StockAnalyzer/internal/model"

// BollingerResult holds the three bands.
type BollingerResult struct {
	Upper  model.Series
	Middle model.Series
	Lower  model.Series
}

// Bollinger computes SMA(window) +/- k * sample standard deviation.
func Bollinger(prices []float64, window int, k float64) BollingerResult {
	middle := SMA(prices, window)
	std := RollingStd(prices, window)
	res := BollingerResult{
		Upper:  model.NewSeries(len(prices)),
		Middle: middle,
		Lower:  model.NewSeries(len(prices)),
	}
	for i := range prices {
		if !middle[i].Valid || !std[i].Valid {
			continue
		}
		res.Upper[i] = model.Value(middle[i].Float64 + k*std[i].Float64)
		res.Lower[i] = model.Value(middle[i].Float64 - k*std[i].Float64)
	}
	return res
}
