package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/recorder"
)

//go:embed templates/*.html
var templateFS embed.FS

// tableRows is how many trailing rows the single view lists.
const tableRows = 20

var funcs = template.FuncMap{
	"fixed":     fixed,
	"price":     func(v float64) string { return "$" + fixed(v, 2) },
	"signed":    signed,
	"nullFixed": nullFixed,
	"sign":      sign,
	"upper":     strings.ToUpper,
}

func fixed(v float64, places int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(places))
}

func signed(v float64, places int) string {
	s := fixed(v, places)
	if v > 0 {
		return "+" + s
	}
	return s
}

func nullFixed(v null.Float, places int) string {
	if !v.Valid {
		return "n/a"
	}
	return fixed(v.Float64, places)
}

func sign(v float64) string {
	switch {
	case v > 0:
		return "pos"
	case v < 0:
		return "neg"
	}
	return ""
}

// parsePages builds one template set per page, each sharing the layout.
func parsePages(names ...string) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

type formData struct {
	Mode    string
	Tickers string
	Period  string
	Periods []model.Period
}

type page struct {
	Title string
	Form  formData
	Error string
}

type tableRow struct {
	Date                           string
	Open, High, Low, Close, Volume float64
	Values                         []null.Float
}

type analyzePage struct {
	page
	Analysis *model.Analysis
	ChartURL string
	Columns  []string
	Rows     []tableRow
}

type comparePage struct {
	page
	Summaries []compare.Summary
	Shared    int
	Failed    []analyzer.TickerError
	ChartURL  string
}

type outputsPage struct {
	page
	Dir   string
	Files []recorder.OutputFile
}

// lastRows lists the trailing rows of a result, newest first, with the
// short SMA, RSI and MACD columns.
func lastRows(res *analyzer.AnalysisResult) ([]string, []tableRow) {
	a := res.Analysis
	cols := []string{a.ShortSMA, a.RSIName, model.IndicatorMACD}
	n := res.Series.Len()
	var rows []tableRow
	for i := n - 1; i >= 0 && i >= n-tableRows; i-- {
		b := res.Series.Bar(i)
		row := tableRow{
			Date: b.Time.Format("2006-01-02"),
			Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		}
		for _, c := range cols {
			row.Values = append(row.Values, res.Indicators.At(c, i))
		}
		rows = append(rows, row)
	}
	return cols, rows
}
