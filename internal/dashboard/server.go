// Package dashboard serves the browser front end: a query form, the single
// ticker and comparison views, their charts as PNG, JSON endpoints and the
// Prometheus scrape endpoint.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/metrics"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/recorder"
)

// Server handles dashboard requests. Runs never write to the output
// directory; it is only listed.
type Server struct {
	Runner    *analyzer.Runner
	Metrics   *metrics.Metrics
	OutputDir string

	pages map[string]*template.Template
}

// NewServer creates a Server around r. The runner's recorder is replaced with
// a no-op one.
func NewServer(r *analyzer.Runner, m *metrics.Metrics, outputDir string) (*Server, error) {
	pages, err := parsePages("index", "analyze", "compare", "outputs")
	if err != nil {
		return nil, err
	}
	run := *r
	run.Recorder = recorder.NewNoopRecorder()
	return &Server{Runner: &run, Metrics: m, OutputDir: outputDir, pages: pages}, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /compare", s.handleCompare)
	mux.HandleFunc("GET /outputs", s.handleOutputs)
	mux.HandleFunc("GET /chart/analysis.png", s.handleAnalysisChart)
	mux.HandleFunc("GET /chart/compare.png", s.handleCompareChart)
	mux.HandleFunc("GET /api/analysis", s.handleAPIAnalysis)
	mux.HandleFunc("GET /api/compare", s.handleAPICompare)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return s.instrument(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("dashboard: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	slog.Info("dashboard stopped")
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.ObserveHTTP(route, sw.code)
		slog.Debug("http request", "method", r.Method, "path", r.URL.Path, "code", sw.code, "elapsed", time.Since(start))
	})
}

// query reads the form fields shared by every view.
func query(r *http.Request) formData {
	q := r.URL.Query()
	f := formData{
		Mode:    q.Get("mode"),
		Tickers: strings.TrimSpace(q.Get("tickers")),
		Period:  strings.TrimSpace(q.Get("period")),
		Periods: model.ValidPeriods,
	}
	if f.Tickers == "" {
		f.Tickers = strings.TrimSpace(q.Get("ticker"))
	}
	if f.Period == "" {
		f.Period = string(model.DefaultPeriod)
	}
	return f
}

var errNoTicker = errors.New("enter a ticker symbol")

// firstTicker returns the first normalized symbol of the tickers field.
func firstTicker(f formData) (string, error) {
	tickers := collector.ParseTickers(f.Tickers)
	if len(tickers) == 0 {
		return "", errNoTicker
	}
	return tickers[0], nil
}

func (f formData) encode() string {
	v := url.Values{}
	v.Set("tickers", f.Tickers)
	v.Set("period", f.Period)
	return v.Encode()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index", page{Title: "Analyze", Form: query(r)})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	tickers := collector.ParseTickers(f.Tickers)
	if f.Mode == "compare" || len(tickers) > 1 {
		f.Mode = "compare"
		http.Redirect(w, r, "/compare?"+f.encode(), http.StatusSeeOther)
		return
	}
	f.Mode = "single"
	p := analyzePage{page: page{Title: "Analysis", Form: f}}
	if len(tickers) == 0 {
		p.Error = errNoTicker.Error()
		s.render(w, http.StatusBadRequest, "analyze", p)
		return
	}

	res, err := s.runner(false).Analyze(r.Context(), tickers[0], f.Period)
	if err != nil {
		p.Error = err.Error()
		s.render(w, httpStatus(err), "analyze", p)
		return
	}
	p.Title = res.Analysis.Symbol
	p.Analysis = res.Analysis
	p.ChartURL = "/chart/analysis.png?" + f.encode()
	p.Columns, p.Rows = lastRows(res)
	s.render(w, http.StatusOK, "analyze", p)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	f.Mode = "compare"
	p := comparePage{page: page{Title: "Comparison", Form: f}}

	res, err := s.runner(false).Compare(r.Context(), collector.ParseTickers(f.Tickers), f.Period)
	if err != nil {
		p.Error = err.Error()
		s.render(w, httpStatus(err), "compare", p)
		return
	}
	p.Summaries = res.Table.Summaries
	p.Shared = len(res.Table.Dates)
	p.Failed = res.Failed
	p.ChartURL = "/chart/compare.png?" + f.encode()
	s.render(w, http.StatusOK, "compare", p)
}

func (s *Server) handleOutputs(w http.ResponseWriter, r *http.Request) {
	p := outputsPage{page: page{Title: "Outputs", Form: query(r)}, Dir: s.OutputDir}
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = recorder.DefaultOutputPattern
	}
	files, err := recorder.ListOutputs(s.OutputDir, pattern)
	if err != nil {
		p.Error = err.Error()
		s.render(w, http.StatusBadRequest, "outputs", p)
		return
	}
	p.Files = files
	s.render(w, http.StatusOK, "outputs", p)
}

func (s *Server) handleAnalysisChart(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	sym, err := firstTicker(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.runner(true).Analyze(r.Context(), sym, f.Period)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	writePNG(w, res.Chart)
}

func (s *Server) handleCompareChart(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	res, err := s.runner(true).Compare(r.Context(), collector.ParseTickers(f.Tickers), f.Period)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(err))
		return
	}
	writePNG(w, res.Chart)
}

type analysisResponse struct {
	RunID       string          `json:"run_id"`
	Analysis    *model.Analysis `json:"analysis"`
	Rows        int             `json:"rows"`
	GeneratedAt time.Time       `json:"generated_at"`
}

func (s *Server) handleAPIAnalysis(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	sym, err := firstTicker(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res, err := s.runner(false).Analyze(r.Context(), sym, f.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		RunID:       res.RunID,
		Analysis:    res.Analysis,
		Rows:        res.Series.Len(),
		GeneratedAt: res.GeneratedAt,
	})
}

type compareResponse struct {
	RunID       string         `json:"run_id"`
	Table       *compare.Table `json:"table"`
	Failed      []string       `json:"failed,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	f := query(r)
	res, err := s.runner(false).Compare(r.Context(), collector.ParseTickers(f.Tickers), f.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := compareResponse{RunID: res.RunID, Table: res.Table, GeneratedAt: res.GeneratedAt}
	for _, te := range res.Failed {
		resp.Failed = append(resp.Failed, te.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// runner returns a copy of the shared runner with chart rendering set.
func (s *Server) runner(charts bool) *analyzer.Runner {
	r := *s.Runner
	r.Charts = charts
	return &r
}

func (s *Server) render(w http.ResponseWriter, code int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("render template", "page", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), map[string]string{"error": err.Error()})
}

// httpStatus maps domain errors onto response codes.
func httpStatus(err error) int {
	var (
		ite *model.InvalidTickerError
		ipe *model.InvalidPeriodError
		eie *model.EmptyInputError
		ide *model.InsufficientDataError
	)
	switch {
	case errors.As(err, &ipe):
		return http.StatusBadRequest
	case errors.As(err, &ide):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ite), errors.As(err, &eie):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}
