package model

import "github.com/guregu/null/v6"

// Trend compares the short and long SMA at the latest row.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "n/a"
)

// TrendStrength is the five-level reading of close vs SMA(short) vs SMA(long).
type TrendStrength string

const (
	StrengthStrongUp   TrendStrength = "strong uptrend"
	StrengthUp         TrendStrength = "uptrend"
	StrengthStrongDown TrendStrength = "strong downtrend"
	StrengthDown       TrendStrength = "downtrend"
	StrengthSideways   TrendStrength = "sideways"
	StrengthUnknown    TrendStrength = "insufficient data"
)

// RSIZone classifies the latest RSI.
type RSIZone string

const (
	ZoneOverbought RSIZone = "overbought"
	ZoneOversold   RSIZone = "oversold"
	ZoneNeutral    RSIZone = "neutral"
	ZoneUnknown    RSIZone = "n/a"
)

// Crossover describes a MACD/signal cross at the latest row.
type Crossover string

const (
	CrossBullish Crossover = "bullish"
	CrossBearish Crossover = "bearish"
	CrossNone    Crossover = "none"
)

// Stats are whole-period figures for one series.
type Stats struct {
	LatestClose  float64 `json:"latest_close"`
	PrevClose    float64 `json:"prev_close"`
	Change       float64 `json:"change"`
	ChangePct    float64 `json:"change_pct"`
	PeriodReturn float64 `json:"period_return"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	AvgVolume    float64 `json:"avg_volume"`
	Rows         int     `json:"rows"`
}

// Analysis is the rule-based reading of one ticker's latest row.
type Analysis struct {
	Symbol    string                `json:"symbol"`
	Period    Period                `json:"period"`
	Stats     Stats                 `json:"stats"`
	ShortSMA  string                `json:"short_sma"`
	LongSMA   string                `json:"long_sma"`
	RSIName   string                `json:"rsi_name"`
	VolName   string                `json:"vol_name"`
	Latest    map[string]null.Float `json:"latest"`
	Trend     Trend                 `json:"trend"`
	Strength  TrendStrength         `json:"strength"`
	RSIZone   RSIZone               `json:"rsi_zone"`
	Crossover Crossover             `json:"crossover"`
	// MACDBias is "bullish" when MACD is above its signal line, else "bearish".
	MACDBias Crossover `json:"macd_bias"`
}
