package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileRecorder writes charts, reports and exports into one directory.
type FileRecorder struct {
	Dir      string
	Exporter Exporter // nil disables exports
}

// NewFileRecorder creates dir if needed. format selects the exporter
// (none, csv, json, parquet).
func NewFileRecorder(dir, format string) (*FileRecorder, error) {
	exp, err := NewExporter(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileRecorder{Dir: dir, Exporter: exp}, nil
}

// RecordAnalysis writes <TICKER>_analysis_<ts>.png, <TICKER>_report_<ts>.txt
// and, when an exporter is set, <TICKER>_indicators_<ts>.<ext>.
func (r *FileRecorder) RecordAnalysis(rec *AnalysisRecord) (*Outputs, error) {
	sym := safeName(rec.Series.Symbol)
	ts := stamp(rec.GeneratedAt)
	out := &Outputs{}

	if len(rec.Chart) > 0 {
		path := r.path(fmt.Sprintf("%s_analysis_%s.png", sym, ts))
		if err := os.WriteFile(path, rec.Chart, 0o644); err != nil {
			return out, fmt.Errorf("write chart: %w", err)
		}
		out.Chart = path
	}

	path := r.path(fmt.Sprintf("%s_report_%s.txt", sym, ts))
	if err := os.WriteFile(path, []byte(rec.Report), 0o644); err != nil {
		return out, fmt.Errorf("write report: %w", err)
	}
	out.Report = path

	if r.Exporter != nil && rec.Indicators != nil {
		path := r.path(fmt.Sprintf("%s_indicators_%s.%s", sym, ts, r.Exporter.Extension()))
		if err := r.Exporter.Export(AnalysisFrame(rec.Series, rec.Indicators), path); err != nil {
			return out, fmt.Errorf("export indicators: %w", err)
		}
		out.Export = path
	}

	slog.Info("analysis recorded", "symbol", rec.Series.Symbol, "chart", out.Chart, "report", out.Report, "export", out.Export)
	return out, nil
}

// RecordComparison writes compare_<T1_T2...>_<ts>.png plus the summary text
// and optional export under the same stem.
func (r *FileRecorder) RecordComparison(rec *ComparisonRecord) (*Outputs, error) {
	names := make([]string, len(rec.Table.Tickers))
	for i, t := range rec.Table.Tickers {
		names[i] = safeName(t)
	}
	stem := fmt.Sprintf("compare_%s_%s", strings.Join(names, "_"), stamp(rec.GeneratedAt))
	out := &Outputs{}

	if len(rec.Chart) > 0 {
		path := r.path(stem + ".png")
		if err := os.WriteFile(path, rec.Chart, 0o644); err != nil {
			return out, fmt.Errorf("write chart: %w", err)
		}
		out.Chart = path
	}

	if rec.Summary != "" {
		path := r.path(stem + ".txt")
		if err := os.WriteFile(path, []byte(rec.Summary), 0o644); err != nil {
			return out, fmt.Errorf("write summary: %w", err)
		}
		out.Report = path
	}

	if r.Exporter != nil {
		path := r.path(stem + "." + r.Exporter.Extension())
		if err := r.Exporter.Export(ComparisonFrame(rec.Table), path); err != nil {
			return out, fmt.Errorf("export comparison: %w", err)
		}
		out.Export = path
	}

	slog.Info("comparison recorded", "tickers", rec.Table.Tickers, "chart", out.Chart, "export", out.Export)
	return out, nil
}

func (r *FileRecorder) Close() error { return nil }

func (r *FileRecorder) path(name string) string { return filepath.Join(r.Dir, name) }

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(TimestampLayout)
}

// safeName keeps symbols such as "^GSPC" or "BRK.B" but strips path separators.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, s)
}
