package recorder

import (
	"time"

	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
)

// TimestampLayout stamps every output file name.
const TimestampLayout = "20060102_150405"

// AnalysisRecord is everything produced by one single-ticker run.
type AnalysisRecord struct {
	Series      *model.PriceSeries
	Indicators  *model.IndicatorSet
	Report      string
	Chart       []byte // PNG, optional
	GeneratedAt time.Time
}

// ComparisonRecord is everything produced by one comparison run.
type ComparisonRecord struct {
	Table       *compare.Table
	Summary     string
	Chart       []byte // PNG, optional
	GeneratedAt time.Time
}

// Outputs lists the files a record was written to. Empty fields were skipped.
type Outputs struct {
	Chart  string `json:"chart,omitempty"`
	Report string `json:"report,omitempty"`
	Export string `json:"export,omitempty"`
}

// Recorder persists run results.
type Recorder interface {
	RecordAnalysis(rec *AnalysisRecord) (*Outputs, error)
	RecordComparison(rec *ComparisonRecord) (*Outputs, error)
	Close() error
}
