package collector

import (
	"context"

	"StockAnalyzer/internal/model"
)

// Fetcher retrieves daily bars for one symbol over a lookback period.
// An unknown or unreachable symbol is reported as *model.InvalidTickerError.
// A known symbol with no bars returns an empty slice and no error.
type Fetcher interface {
	FetchHistory(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error)
	Name() string
}
