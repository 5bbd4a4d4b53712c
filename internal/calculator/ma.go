package calculator

import (
	"math"

	"StockAnalyzer/internal/model"
)

// SMA computes the simple moving average of prices over a trailing window.
// The first window-1 rows are undefined; a series shorter than the window is
// entirely undefined.
func SMA(prices []float64, window int) model.Series {
	out := model.NewSeries(len(prices))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		out[i] = model.Value(mean(prices[i-window+1 : i+1]))
	}
	return out
}

// RollingStd computes the sample (n-1) standard deviation over a trailing window.
func RollingStd(prices []float64, window int) model.Series {
	out := model.NewSeries(len(prices))
	if window < 2 {
		return out
	}
	for i := window - 1; i < len(prices); i++ {
		out[i] = model.Value(sampleStd(prices[i-window+1 : i+1]))
	}
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func sampleStd(xs []float64) float64 {
	m := mean(xs)
	sq := 0.0
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}
