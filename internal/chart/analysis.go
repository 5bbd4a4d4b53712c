package chart

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/model"
)

// Analysis figure size.
const (
	AnalysisWidth  = 12 * vg.Inch
	AnalysisHeight = 14 * vg.Inch
)

// RenderAnalysis draws four stacked panels: price with SMAs and Bollinger
// bands, volume, RSI with the 30/70 guides, and MACD with its histogram.
func RenderAnalysis(w io.Writer, series *model.PriceSeries, set *model.IndicatorSet, p calculator.Params) error {
	if series.Empty() {
		return &model.EmptyInputError{Symbol: series.Symbol}
	}
	times := series.Times()
	n := len(times)
	bw := barWidth(AnalysisWidth, n)

	price, err := pricePanel(series, set, p, times)
	if err != nil {
		return err
	}

	volume := newPanel("Volume", times)
	bars := series.Bars()
	if err := addBars(volume, series.Volumes(), func(i int) bool { return bars[i].Close >= bars[i].Open }, bw); err != nil {
		return err
	}
	volume.Y.Min = 0

	rsiName := calculator.RSIName(p.RSIWindow)
	rsi := newPanel(fmt.Sprintf("RSI (%d)", p.RSIWindow), times)
	addGuide(rsi, 70, colorOverbought, true)
	addGuide(rsi, 30, colorOversold, true)
	rsiSeries, _ := set.Get(rsiName)
	if err := addLine(rsi, "RSI", rsiSeries, colorOverbought, vg.Points(1.5), false); err != nil {
		return err
	}
	rsi.Y.Min, rsi.Y.Max = 0, 100

	macd := newPanel(fmt.Sprintf("MACD (%d, %d, %d)", p.MACDFast, p.MACDSlow, p.MACDSignal), times)
	hist, _ := set.Get(model.IndicatorMACDHist)
	if hist.Defined() > 0 {
		if err := addBars(macd, zeroFilled(hist), nil, bw); err != nil {
			return err
		}
		addGuide(macd, 0, withAlpha(colorText, 0x4d), false)
	}
	macdLine, _ := set.Get(model.IndicatorMACD)
	signal, _ := set.Get(model.IndicatorMACDSignal)
	if err := addLine(macd, "MACD", macdLine, colorAccent, vg.Points(1.5), false); err != nil {
		return err
	}
	if err := addLine(macd, "Signal", signal, colorOverbought, vg.Points(1.5), false); err != nil {
		return err
	}

	plots := [][]*plot.Plot{{price}, {volume}, {rsi}, {macd}}
	for _, row := range plots {
		pinRanges(row[0], n)
	}
	return render(w, plots, AnalysisWidth, AnalysisHeight)
}

// AnalysisPNG is RenderAnalysis into a byte slice.
func AnalysisPNG(series *model.PriceSeries, set *model.IndicatorSet, p calculator.Params) ([]byte, error) {
	return toPNG(func(w io.Writer) error { return RenderAnalysis(w, series, set, p) })
}

func pricePanel(series *model.PriceSeries, set *model.IndicatorSet, p calculator.Params, times []time.Time) (*plot.Plot, error) {
	pl := newPanel(fmt.Sprintf("%s  |  %s  |  Price, moving averages, Bollinger bands", series.Symbol, series.Period), times)
	pl.Y.Label.Text = "Price"

	upper, _ := set.Get(model.IndicatorBBUpper)
	lower, _ := set.Get(model.IndicatorBBLower)
	if band := bandPolygon(upper, lower); band != nil {
		pl.Add(band)
	}
	if err := addLine(pl, "", upper, withAlpha(colorAccent, 0x80), vg.Points(0.8), true); err != nil {
		return nil, err
	}
	if err := addLine(pl, "", lower, withAlpha(colorAccent, 0x80), vg.Points(0.8), true); err != nil {
		return nil, err
	}

	closes := model.NewSeries(series.Len())
	for i, c := range series.Closes() {
		closes[i] = model.Value(c)
	}
	if err := addLine(pl, "Close", closes, colorAccent, vg.Points(2), false); err != nil {
		return nil, err
	}

	for i, win := range p.SMAWindows {
		name := calculator.SMAName(win)
		s, _ := set.Get(name)
		if err := addLine(pl, fmt.Sprintf("SMA %d", win), s, smaColors[i%len(smaColors)], vg.Points(1.3), false); err != nil {
			return nil, err
		}
	}
	return pl, nil
}

// bandPolygon fills the area between the Bollinger bands over the rows where
// both are defined. Returns nil when there are fewer than two such rows.
func bandPolygon(upper, lower model.Series) *plotter.Polygon {
	var top, bottom plotter.XYs
	for i := range upper {
		u, l := upper.At(i), lower.At(i)
		if !u.Valid || !l.Valid {
			continue
		}
		top = append(top, plotter.XY{X: float64(i), Y: u.Float64})
		bottom = append(bottom, plotter.XY{X: float64(i), Y: l.Float64})
	}
	if len(top) < 2 {
		return nil
	}
	ring := make(plotter.XYs, 0, 2*len(top))
	ring = append(ring, top...)
	for i := len(bottom) - 1; i >= 0; i-- {
		ring = append(ring, bottom[i])
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return nil
	}
	poly.Color = withAlpha(colorAccent, 0x18)
	poly.LineStyle.Width = 0
	return poly
}

func zeroFilled(s model.Series) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		if v.Valid {
			out[i] = v.Float64
		}
	}
	return out
}
