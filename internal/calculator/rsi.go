package calculator

import "StockAnalyzer/internal/model"

// RSIMethod selects how average gains and losses are smoothed.
type RSIMethod string

const (
	// RSISimple uses a rolling arithmetic mean of gains and losses.
	RSISimple RSIMethod = "simple"
	// RSIWilder seeds with the simple mean, then applies Wilder smoothing.
	RSIWilder RSIMethod = "wilder"
)

// RSI computes the relative strength index over the given window.
// Row 0 has no delta, so the first window rows are undefined. The value is
// 100 whenever the average loss is zero.
func RSI(prices []float64, window int, method RSIMethod) model.Series {
	out := model.NewSeries(len(prices))
	if window <= 0 || len(prices) <= window {
		return out
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change // make positive
		}
	}

	if method == RSIWilder {
		avgGain := mean(gains[1 : window+1])
		avgLoss := mean(losses[1 : window+1])
		out[window] = model.Value(rsiValue(avgGain, avgLoss))
		p := float64(window)
		for i := window + 1; i < len(prices); i++ {
			avgGain = (avgGain*(p-1) + gains[i]) / p
			avgLoss = (avgLoss*(p-1) + losses[i]) / p
			out[i] = model.Value(rsiValue(avgGain, avgLoss))
		}
		return out
	}

	for i := window; i < len(prices); i++ {
		avgGain := mean(gains[i-window+1 : i+1])
		avgLoss := mean(losses[i-window+1 : i+1])
		out[i] = model.Value(rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	switch {
	case rsi < 0:
		return 0
	case rsi > 100:
		return 100
	}
	return rsi
}
