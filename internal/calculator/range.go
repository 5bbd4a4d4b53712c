package calculator

import (
	"errors"
	"math"

	"StockAnalyzer/internal/model"
)

// PeriodRange scans every bar and returns the highest high and lowest low.
func PeriodRange(bars []model.OHLCV) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}

// AverageVolume returns the mean volume over all bars.
func AverageVolume(bars []model.OHLCV) float64 {
	if len(bars) == 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars {
		sum += b.Volume
	}
	return sum / float64(len(bars))
}
