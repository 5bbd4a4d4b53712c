package strategy

import (
	"github.com/guregu/null/v6"

	"StockAnalyzer/internal/model"
)

// RSI thresholds for the overbought/oversold reading.
const (
	Overbought = 70.0
	Oversold   = 30.0
)

// classifyTrend compares SMA(short) with SMA(long) at the latest row.
func classifyTrend(short, long null.Float) model.Trend {
	if !short.Valid || !long.Valid {
		return model.TrendUnknown
	}
	switch {
	case short.Float64 > long.Float64:
		return model.TrendUp
	case short.Float64 < long.Float64:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// classifyStrength grades the alignment of close, SMA(short) and SMA(long).
// Bull alignment: close > short > long
// Bear alignment: close < short < long
func classifyStrength(close float64, short, long null.Float) model.TrendStrength {
	if !short.Valid || !long.Valid {
		return model.StrengthUnknown
	}
	s, l := short.Float64, long.Float64
	switch {
	case close > s && s > l:
		return model.StrengthStrongUp
	case close > s:
		return model.StrengthUp
	case close < s && s < l:
		return model.StrengthStrongDown
	case close < s:
		return model.StrengthDown
	default:
		return model.StrengthSideways
	}
}

func classifyRSI(rsi null.Float) model.RSIZone {
	if !rsi.Valid {
		return model.ZoneUnknown
	}
	switch {
	case rsi.Float64 > Overbought:
		return model.ZoneOverbought
	case rsi.Float64 < Oversold:
		return model.ZoneOversold
	default:
		return model.ZoneNeutral
	}
}

// classifyCrossover detects an upward or downward MACD/signal cross between
// the prior row and the latest row.
func classifyCrossover(macd, signal model.Series) model.Crossover {
	n := len(macd)
	if n < 2 || len(signal) != n {
		return model.CrossNone
	}
	cur, curSig := macd[n-1], signal[n-1]
	prev, prevSig := macd[n-2], signal[n-2]
	if !cur.Valid || !curSig.Valid || !prev.Valid || !prevSig.Valid {
		return model.CrossNone
	}
	switch {
	case cur.Float64 > curSig.Float64 && prev.Float64 <= prevSig.Float64:
		return model.CrossBullish
	case cur.Float64 < curSig.Float64 && prev.Float64 >= prevSig.Float64:
		return model.CrossBearish
	default:
		return model.CrossNone
	}
}

// classifyBias reports which side of the signal line MACD sits on.
func classifyBias(macd, signal null.Float) model.Crossover {
	if !macd.Valid || !signal.Valid {
		return model.CrossNone
	}
	if macd.Float64 > signal.Float64 {
		return model.CrossBullish
	}
	return model.CrossBearish
}
