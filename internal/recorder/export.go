package recorder

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/parquet-go/parquet-go"

	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
)

// Frame is a wide table: one row per timestamp, one column per series.
type Frame struct {
	Times   []time.Time
	Columns []Column
}

// Column is one named series of a Frame.
type Column struct {
	Name   string
	Values model.Series
}

// AnalysisFrame lays out OHLC prices followed by every indicator.
func AnalysisFrame(series *model.PriceSeries, set *model.IndicatorSet) *Frame {
	bars := series.Bars()
	n := len(bars)
	open, high, low, closing := model.NewSeries(n), model.NewSeries(n), model.NewSeries(n), model.NewSeries(n)
	for i, b := range bars {
		open[i] = model.Value(b.Open)
		high[i] = model.Value(b.High)
		low[i] = model.Value(b.Low)
		closing[i] = model.Value(b.Close)
	}
	f := &Frame{
		Times: series.Times(),
		Columns: []Column{
			{"open", open}, {"high", high}, {"low", low}, {"close", closing},
		},
	}
	for _, name := range set.Names() {
		values, _ := set.Get(name)
		f.Columns = append(f.Columns, Column{name, values})
	}
	return f
}

// ComparisonFrame lays out the four comparison series of every ticker,
// named <TICKER>_<series>.
func ComparisonFrame(t *compare.Table) *Frame {
	f := &Frame{Times: t.Dates}
	for _, sym := range t.Tickers {
		f.Columns = append(f.Columns,
			Column{sym + "_normalized", t.Normalized[sym]},
			Column{sym + "_daily_return", t.DailyReturn[sym]},
			Column{sym + "_cumulative_return", t.Cumulative[sym]},
			Column{sym + "_rsi", t.RSI[sym]},
		)
	}
	return f
}

// Exporter writes a Frame to a file.
type Exporter interface {
	Export(f *Frame, path string) error
	Extension() string
}

// ExportFormats lists the accepted export format names.
var ExportFormats = []string{"none", "csv", "json", "parquet"}

// NewExporter returns the exporter for format. "none" and "" return nil.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "none":
		return nil, nil
	case "csv":
		return CSVExporter{}, nil
	case "json":
		return JSONExporter{}, nil
	case "parquet":
		return ParquetExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use: %s)", format, strings.Join(ExportFormats, ", "))
	}
}

// CSVExporter writes a header of date plus column names. Undefined values
// are empty cells.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Export(f *Frame, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := csv.NewWriter(file)

	header := make([]string, 0, len(f.Columns)+1)
	header = append(header, "date")
	for _, c := range f.Columns {
		header = append(header, c.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, t := range f.Times {
		row := make([]string, 0, len(header))
		row = append(row, t.UTC().Format(time.RFC3339))
		for _, c := range f.Columns {
			row = append(row, floatStr(c.Values.At(i)))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

// JSONExporter writes an indented array of {time, values} records.
type JSONExporter struct{}

func (JSONExporter) Extension() string { return "json" }

type jsonRecord struct {
	Time   time.Time             `json:"time"`
	Values map[string]null.Float `json:"values"`
}

func (JSONExporter) Export(f *Frame, path string) error {
	records := make([]jsonRecord, len(f.Times))
	for i, t := range f.Times {
		values := make(map[string]null.Float, len(f.Columns))
		for _, c := range f.Columns {
			values[c.Name] = c.Values.At(i)
		}
		records[i] = jsonRecord{Time: t.UTC(), Values: values}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ParquetRow is the long-format layout of a Parquet export: one row per
// (time, series) pair, with a null value where the series is undefined.
type ParquetRow struct {
	Time   time.Time `parquet:"time,timestamp"`
	Series string    `parquet:"series,dict"`
	Value  *float64  `parquet:"value,optional"`
}

// ParquetExporter writes ParquetRow records.
type ParquetExporter struct{}

func (ParquetExporter) Extension() string { return "parquet" }

func (ParquetExporter) Export(f *Frame, path string) error {
	rows := make([]ParquetRow, 0, len(f.Times)*len(f.Columns))
	for i, t := range f.Times {
		for _, c := range f.Columns {
			row := ParquetRow{Time: t.UTC(), Series: c.Name}
			if v := c.Values.At(i); v.Valid {
				x := v.Float64
				row.Value = &x
			}
			rows = append(rows, row)
		}
	}
	return parquet.WriteFile(path, rows)
}
