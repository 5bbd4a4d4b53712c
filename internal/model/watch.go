package model

import "time"

// SignalSnapshot is the classification of one ticker at one scheduled run.
type SignalSnapshot struct {
	Trend     Trend     `json:"trend"`
	RSIZone   RSIZone   `json:"rsi_zone"`
	MACDBias  Crossover `json:"macd_bias"`
	Close     float64   `json:"close"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchState is the persisted last-seen signal per ticker, used to report
// only what changed between scheduled runs.
type WatchState struct {
	Tickers   map[string]SignalSnapshot `json:"tickers"`
	UpdatedAt time.Time                 `json:"updated_at"`
}
