package calculator

import (
	"errors"
	"fmt"

	"StockAnalyzer/internal/model"
)

// Params are the lookback windows used by Compute.
type Params struct {
	SMAWindows       []int     `yaml:"sma_windows" json:"sma_windows"`
	RSIWindow        int       `yaml:"rsi_window" json:"rsi_window"`
	RSIMethod        RSIMethod `yaml:"rsi_method" json:"rsi_method"`
	MACDFast         int       `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow         int       `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal       int       `yaml:"macd_signal" json:"macd_signal"`
	BollingerWindow  int       `yaml:"bollinger_window" json:"bollinger_window"`
	BollingerK       float64   `yaml:"bollinger_k" json:"bollinger_k"`
	VolatilityWindow int       `yaml:"volatility_window" json:"volatility_window"`
}

// DefaultParams returns SMA 10/30/60, RSI 14, MACD 12/26/9 and Bollinger 20x2.
func DefaultParams() Params {
	return Params{
		SMAWindows:       []int{10, 30, 60},
		RSIWindow:        14,
		RSIMethod:        RSISimple,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerWindow:  20,
		BollingerK:       2,
		VolatilityWindow: 20,
	}
}

// Validate checks that every window is usable.
func (p Params) Validate() error {
	if len(p.SMAWindows) == 0 {
		return errors.New("at least one SMA window is required")
	}
	for _, w := range p.SMAWindows {
		if w <= 0 {
			return fmt.Errorf("sma window must be positive, got %d", w)
		}
	}
	if p.RSIWindow <= 0 {
		return fmt.Errorf("rsi window must be positive, got %d", p.RSIWindow)
	}
	if p.RSIMethod != RSISimple && p.RSIMethod != RSIWilder {
		return fmt.Errorf("unknown rsi method %q", p.RSIMethod)
	}
	if p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0 {
		return errors.New("macd windows must be positive")
	}
	if p.MACDFast >= p.MACDSlow {
		return fmt.Errorf("macd fast window (%d) must be shorter than slow window (%d)", p.MACDFast, p.MACDSlow)
	}
	if p.BollingerWindow < 2 {
		return fmt.Errorf("bollinger window must be at least 2, got %d", p.BollingerWindow)
	}
	if p.BollingerK <= 0 {
		return errors.New("bollinger k must be positive")
	}
	if p.VolatilityWindow < 2 {
		return fmt.Errorf("volatility window must be at least 2, got %d", p.VolatilityWindow)
	}
	return nil
}

// ShortSMA is the first configured SMA window's indicator name.
func (p Params) ShortSMA() string { return SMAName(p.SMAWindows[0]) }

// LongSMA is the second configured SMA window's name, or the first when only
// one is configured.
func (p Params) LongSMA() string {
	if len(p.SMAWindows) > 1 {
		return SMAName(p.SMAWindows[1])
	}
	return p.ShortSMA()
}

func SMAName(window int) string        { return fmt.Sprintf("sma_%d", window) }
func RSIName(window int) string        { return fmt.Sprintf("rsi_%d", window) }
func VolatilityName(window int) string { return fmt.Sprintf("volatility_%d", window) }

// Compute derives every indicator from series. Indicators whose window exceeds
// the available history come back entirely undefined; an empty series is an
// EmptyInputError.
func Compute(series *model.PriceSeries, p Params) (*model.IndicatorSet, error) {
	if series == nil || series.Empty() {
		symbol := ""
		if series != nil {
			symbol = series.Symbol
		}
		return nil, &model.EmptyInputError{Symbol: symbol}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("indicator params: %w", err)
	}

	closes := series.Closes()
	set := model.NewIndicatorSet(len(closes))

	for _, w := range p.SMAWindows {
		set.Put(SMAName(w), SMA(closes, w))
	}

	set.Put(RSIName(p.RSIWindow), RSI(closes, p.RSIWindow, p.RSIMethod))

	macd := MACD(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	set.Put(model.IndicatorMACD, macd.MACD)
	set.Put(model.IndicatorMACDSignal, macd.Signal)
	set.Put(model.IndicatorMACDHist, macd.Histogram)

	bb := Bollinger(closes, p.BollingerWindow, p.BollingerK)
	set.Put(model.IndicatorBBUpper, bb.Upper)
	set.Put(model.IndicatorBBMiddle, bb.Middle)
	set.Put(model.IndicatorBBLower, bb.Lower)

	set.Put(VolatilityName(p.VolatilityWindow), RollingStd(closes, p.VolatilityWindow))
	set.Put(model.IndicatorReturn, DailyReturns(closes))

	volumes := series.Volumes()
	vol := model.NewSeries(len(volumes))
	for i, v := range volumes {
		vol[i] = model.Value(v)
	}
	set.Put(model.IndicatorVolume, vol)

	return set, nil
}
