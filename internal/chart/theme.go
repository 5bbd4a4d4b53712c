// Package chart renders analysis and comparison figures as PNG images with
// gonum.org/v1/plot.
//
// Every panel plots against the row index rather than wall-clock time, so
// weekends and holidays leave no gaps and bar charts line up with lines.
// The X axis labels map indexes back to dates.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"StockAnalyzer/internal/model"
)

var (
	colorBG         = hex(0x1a1a2e)
	colorPanel      = hex(0x16213e)
	colorGrid       = hex(0x2a2a4a)
	colorText       = hex(0xe0e0e0)
	colorAccent     = hex(0x00d4ff)
	colorUp         = hex(0x00c853)
	colorDown       = hex(0xff1744)
	colorOverbought = hex(0xff6b6b)
	colorOversold   = hex(0x6bcb77)

	// smaColors are used in order for the configured SMA windows.
	smaColors = []color.RGBA{hex(0xff6b6b), hex(0xffd93d), hex(0x6bcb77), hex(0xc084fc)}

	// seriesColors cycle across tickers in comparison charts.
	seriesColors = []color.RGBA{
		hex(0x00d4ff), hex(0xff6b6b), hex(0xffd93d), hex(0x6bcb77), hex(0xc084fc), hex(0xfb923c),
	}
)

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// newPanel returns a plot styled for the dark theme with a grid and the
// shared index-to-date X axis.
func newPanel(title string, times []time.Time) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = colorPanel
	p.Title.Text = title
	p.Title.TextStyle.Color = colorText
	p.Title.TextStyle.Font.Size = vg.Points(12)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = colorGrid
		ax.Label.TextStyle.Color = colorText
		ax.Tick.LineStyle.Color = colorGrid
		ax.Tick.Label.Color = colorText
		ax.Tick.Label.Font.Size = vg.Points(8)
	}

	p.Legend.TextStyle.Color = colorText
	p.Legend.TextStyle.Font.Size = vg.Points(8)
	p.Legend.Top = true
	p.Legend.Left = true

	grid := plotter.NewGrid()
	grid.Vertical.Color = withAlpha(colorGrid, 0xb0)
	grid.Vertical.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	grid.Horizontal.Color = withAlpha(colorGrid, 0xb0)
	grid.Horizontal.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(grid)

	p.X.Tick.Marker = dateTicker{times: times}
	return p
}

// pinRanges gives every panel of a figure the same X range and a finite Y
// range when nothing with data was added.
func pinRanges(p *plot.Plot, n int) {
	p.X.Min = -0.5
	p.X.Max = float64(n) - 0.5
	if n == 0 {
		p.X.Max = 0.5
	}
	if math.IsInf(p.Y.Min, 0) || math.IsInf(p.Y.Max, 0) || p.Y.Min > p.Y.Max {
		p.Y.Min, p.Y.Max = 0, 1
	}
}

// dateTicker labels row indexes with the date of that row.
type dateTicker struct {
	times []time.Time
}

const targetTicks = 6

func (t dateTicker) Ticks(min, max float64) []plot.Tick {
	n := len(t.times)
	if n == 0 {
		return nil
	}
	lo := int(math.Max(0, math.Ceil(min)))
	hi := int(math.Min(float64(n-1), math.Floor(max)))
	if hi < lo {
		return nil
	}
	layout := "01/02"
	if t.times[n-1].Sub(t.times[0]) > 180*24*time.Hour {
		layout = "2006-01"
	}
	step := (hi - lo) / (targetTicks - 1)
	if step < 1 {
		step = 1
	}
	var ticks []plot.Tick
	for i := lo; i <= hi; i += step {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: t.times[i].UTC().Format(layout)})
	}
	return ticks
}

// definedXY keeps the defined points of s, indexed by row.
func definedXY(s model.Series) plotter.XYs {
	xys := make(plotter.XYs, 0, len(s))
	for i, v := range s {
		if v.Valid {
			xys = append(xys, plotter.XY{X: float64(i), Y: v.Float64})
		}
	}
	return xys
}

// addLine plots the defined part of s. Series with fewer than two defined
// points are skipped.
func addLine(p *plot.Plot, label string, s model.Series, c color.Color, width vg.Length, dashed bool) error {
	xys := definedXY(s)
	if len(xys) < 2 {
		return nil
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line %s: %w", label, err)
	}
	l.Color = c
	l.Width = width
	if dashed {
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	p.Add(l)
	if label != "" {
		p.Legend.Add(label, l)
	}
	return nil
}

// addGuide draws a horizontal reference line at y.
func addGuide(p *plot.Plot, y float64, c color.Color, dashed bool) {
	f := plotter.NewFunction(func(float64) float64 { return y })
	f.Color = c
	f.Width = vg.Points(0.8)
	if dashed {
		f.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	p.Add(f)
}

// addBars draws one bar per row, split into two colors by sign or by the
// up predicate when given.
func addBars(p *plot.Plot, values []float64, up func(i int) bool, barWidth vg.Length) error {
	pos := make(plotter.Values, len(values))
	neg := make(plotter.Values, len(values))
	for i, v := range values {
		isUp := v >= 0
		if up != nil {
			isUp = up(i)
		}
		if isUp {
			pos[i] = v
		} else {
			neg[i] = v
		}
	}
	for _, part := range []struct {
		vals plotter.Values
		c    color.Color
	}{{pos, withAlpha(colorUp, 0xb3)}, {neg, withAlpha(colorDown, 0xb3)}} {
		bc, err := plotter.NewBarChart(part.vals, barWidth)
		if err != nil {
			return fmt.Errorf("bars: %w", err)
		}
		bc.Color = part.c
		bc.LineStyle.Width = 0
		p.Add(bc)
	}
	return nil
}

// barWidth sizes bars to roughly 80% of the slot each row gets.
func barWidth(figureWidth vg.Length, n int) vg.Length {
	if n == 0 {
		return vg.Points(1)
	}
	w := figureWidth * 0.8 / vg.Length(n) * 0.8
	if w < vg.Points(0.3) {
		w = vg.Points(0.3)
	}
	return w
}

// render lays plots out on a grid and encodes the figure as PNG.
func render(w io.Writer, plots [][]*plot.Plot, width, height vg.Length) error {
	img := vgimg.New(width, height)
	dc := draw.New(img)
	dc.FillPolygon(colorBG, []vg.Point{
		{X: dc.Min.X, Y: dc.Min.Y}, {X: dc.Max.X, Y: dc.Min.Y},
		{X: dc.Max.X, Y: dc.Max.Y}, {X: dc.Min.X, Y: dc.Max.Y},
	})

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j, row := range plots {
		for i, p := range row {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// toPNG runs fn against a buffer and returns the bytes.
func toPNG(fn func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
