// Package analyzer runs the fetch, compute, evaluate, render and record
// pipeline for single tickers and comparisons.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/chart"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/metrics"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/notifier"
	"StockAnalyzer/internal/recorder"
	"StockAnalyzer/internal/strategy"
)

// Run kinds used in metrics labels.
const (
	KindAnalysis   = "analysis"
	KindComparison = "comparison"
)

// Runner owns no per-run state and is safe for concurrent use as long as its
// Recorder is.
type Runner struct {
	Collector *collector.Collector
	Params    calculator.Params
	Recorder  recorder.Recorder
	Metrics   *metrics.Metrics
	// Charts enables PNG rendering.
	Charts bool

	now func() time.Time
}

// NewRunner creates a Runner that renders charts.
func NewRunner(c *collector.Collector, p calculator.Params, rec recorder.Recorder, m *metrics.Metrics) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{Collector: c, Params: p, Recorder: rec, Metrics: m, Charts: true, now: time.Now}
}

// AnalysisResult is the outcome of one single-ticker run.
type AnalysisResult struct {
	RunID       string
	Series      *model.PriceSeries
	Indicators  *model.IndicatorSet
	Analysis    *model.Analysis
	Report      string
	Chart       []byte
	Outputs     *recorder.Outputs
	GeneratedAt time.Time
}

// Analyze fetches one ticker, computes its indicators and writes the chart and report.
func (r *Runner) Analyze(ctx context.Context, symbol, period string) (res *AnalysisResult, err error) {
	start := time.Now()
	runID := logger.NewRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.From(ctx)
	defer func() { r.Metrics.ObserveRun(KindAnalysis, time.Since(start), err) }()

	log.Info("analysis started", "symbol", symbol, "period", period)
	series, err := r.Collector.Fetch(ctx, symbol, period)
	if err != nil {
		return nil, err
	}
	set, err := calculator.Compute(series, r.Params)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", series.Symbol, err)
	}

	res = &AnalysisResult{
		RunID:       runID,
		Series:      series,
		Indicators:  set,
		Analysis:    strategy.Evaluate(series, set, r.Params),
		GeneratedAt: r.now(),
	}
	res.Report = notifier.FormatReport(res.Analysis, res.GeneratedAt)

	if r.Charts {
		res.Chart, err = chart.AnalysisPNG(series, set, r.Params)
		if err != nil {
			return nil, fmt.Errorf("render %s chart: %w", series.Symbol, err)
		}
	}

	res.Outputs, err = r.Recorder.RecordAnalysis(&recorder.AnalysisRecord{
		Series:      series,
		Indicators:  set,
		Report:      res.Report,
		Chart:       res.Chart,
		GeneratedAt: res.GeneratedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", series.Symbol, err)
	}

	a := res.Analysis
	log.Info("analysis finished", "symbol", series.Symbol, "rows", series.Len(),
		"trend", a.Trend, "rsi_zone", a.RSIZone, "crossover", a.Crossover, "elapsed", time.Since(start))
	return res, nil
}

// Evaluate runs Analyze and returns only the classification. It matches
// notifier.AnalyzeFunc.
func (r *Runner) Evaluate(ctx context.Context, symbol string, period model.Period) (*model.Analysis, error) {
	res, err := r.Analyze(ctx, symbol, string(period))
	if err != nil {
		return nil, err
	}
	return res.Analysis, nil
}

// TickerError records a ticker that was dropped from a comparison.
type TickerError struct {
	Symbol string
	Err    error
}

func (e TickerError) Error() string { return fmt.Sprintf("%s: %v", e.Symbol, e.Err) }

func (e TickerError) Unwrap() error { return e.Err }

// ComparisonResult is the outcome of one comparison run.
type ComparisonResult struct {
	RunID       string
	Table       *compare.Table
	Summary     string
	Chart       []byte
	Outputs     *recorder.Outputs
	Failed      []TickerError
	GeneratedAt time.Time
}

// Compare fetches every symbol in order, skips the ones that fail and
// aggregates the rest. Fewer than two usable tickers is an
// InsufficientDataError joined with the individual failures.
func (r *Runner) Compare(ctx context.Context, symbols []string, period string) (res *ComparisonResult, err error) {
	start := time.Now()
	runID := logger.NewRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.From(ctx)
	defer func() { r.Metrics.ObserveRun(KindComparison, time.Since(start), err) }()

	if _, err := model.ParsePeriod(period); err != nil {
		return nil, err
	}
	log.Info("comparison started", "tickers", symbols, "period", period)

	res = &ComparisonResult{RunID: runID}
	var inputs []compare.Input
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		series, err := r.Collector.Fetch(ctx, sym, period)
		if err == nil {
			var set *model.IndicatorSet
			set, err = calculator.Compute(series, r.Params)
			if err == nil {
				inputs = append(inputs, compare.Input{Series: series, Indicators: set})
				continue
			}
		}
		log.Warn("ticker skipped", "symbol", sym, "error", err)
		res.Failed = append(res.Failed, TickerError{Symbol: sym, Err: err})
	}

	table, err := compare.Aggregate(inputs, calculator.RSIName(r.Params.RSIWindow))
	if err != nil {
		errs := []error{err}
		for _, f := range res.Failed {
			errs = append(errs, f)
		}
		return nil, errors.Join(errs...)
	}
	res.Table = table
	res.GeneratedAt = r.now()
	res.Summary = notifier.FormatComparisonSummary(table.Summaries)

	if r.Charts {
		res.Chart, err = chart.ComparisonPNG(table)
		if err != nil {
			return nil, fmt.Errorf("render comparison chart: %w", err)
		}
	}

	res.Outputs, err = r.Recorder.RecordComparison(&recorder.ComparisonRecord{
		Table:       table,
		Summary:     res.Summary,
		Chart:       res.Chart,
		GeneratedAt: res.GeneratedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("record comparison: %w", err)
	}

	log.Info("comparison finished", "tickers", table.Tickers, "shared_dates", len(table.Dates),
		"skipped", len(res.Failed), "elapsed", time.Since(start))
	return res, nil
}
