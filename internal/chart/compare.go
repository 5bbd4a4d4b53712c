package chart

import (
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
)

// Comparison figure size.
const (
	CompareWidth  = 16 * vg.Inch
	CompareHeight = 12 * vg.Inch
)

// RenderComparison draws a 2x2 grid: normalized price, RSI, daily return
// and cumulative return, one line per ticker.
func RenderComparison(w io.Writer, t *compare.Table) error {
	if len(t.Tickers) < compare.MinTickers || len(t.Dates) == 0 {
		return &model.InsufficientDataError{Have: len(t.Tickers), Need: compare.MinTickers}
	}
	n := len(t.Dates)
	title := strings.Join(t.Tickers, " vs ")

	norm := newPanel(title+"  |  Normalized price (first day = 100)", t.Dates)
	addGuide(norm, compare.BaseValue, withAlpha(colorText, 0x4d), false)

	rsi := newPanel("RSI", t.Dates)
	addGuide(rsi, 70, colorOverbought, true)
	addGuide(rsi, 30, colorOversold, true)
	rsi.Y.Min, rsi.Y.Max = 0, 100

	daily := newPanel("Daily return (%)", t.Dates)
	addGuide(daily, 0, withAlpha(colorText, 0x4d), false)

	cum := newPanel("Cumulative return (%)", t.Dates)
	addGuide(cum, 0, withAlpha(colorText, 0x4d), false)

	for i, sym := range t.Tickers {
		c := seriesColors[i%len(seriesColors)]
		panels := []struct {
			p *plot.Plot
			s model.Series
		}{
			{norm, t.Normalized[sym]},
			{rsi, t.RSI[sym]},
			{daily, t.DailyReturn[sym]},
			{cum, t.Cumulative[sym]},
		}
		for _, panel := range panels {
			if err := addLine(panel.p, sym, panel.s, c, vg.Points(1.8), false); err != nil {
				return err
			}
		}
	}

	plots := [][]*plot.Plot{{norm, rsi}, {daily, cum}}
	for _, row := range plots {
		for _, p := range row {
			pinRanges(p, n)
		}
	}
	return render(w, plots, CompareWidth, CompareHeight)
}

// ComparisonPNG is RenderComparison into a byte slice.
func ComparisonPNG(t *compare.Table) ([]byte, error) {
	return toPNG(func(w io.Writer) error { return RenderComparison(w, t) })
}
