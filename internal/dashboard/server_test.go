package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/metrics"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	mock := &collector.MockFetcher{
		End:     time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC),
		Unknown: map[string]bool{"NOPE": true},
	}
	m := metrics.New()
	c := collector.NewCollector(mock, collector.NewMemoryCache(time.Minute), 0, m)
	dir := t.TempDir()
	s, err := NewServer(analyzer.NewRunner(c, calculator.DefaultParams(), nil, m), m, dir)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, dir
}

// get fetches path without following redirects.
func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, string(body)
}

func TestPages(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		code     int
		contains []string
	}{
		{"index", "/", http.StatusOK, []string{"<form", `value="3mo"`, "not investment advice"}},
		{"single", "/analyze?ticker=aapl&period=3mo", http.StatusOK,
			[]string{"AAPL", "Last 20 rows", "/chart/analysis.png?period=3mo&amp;tickers=aapl", "rsi_14"}},
		{"compare", "/compare?tickers=AAPL,MSFT&period=1mo", http.StatusOK,
			[]string{"Comparison", "21 shared dates", "/chart/compare.png?"}},
		{"compare skips failures", "/compare?tickers=AAPL,MSFT,NOPE", http.StatusOK, []string{"Skipped: NOPE"}},
		{"missing ticker", "/analyze", http.StatusBadRequest, []string{"enter a ticker symbol"}},
		{"unknown ticker", "/analyze?ticker=NOPE", http.StatusNotFound, []string{"NOPE"}},
		{"bad period", "/analyze?ticker=AAPL&period=3m", http.StatusBadRequest, []string{"3mo"}},
		{"single ticker compare", "/compare?tickers=AAPL", http.StatusUnprocessableEntity, []string{"Comparison"}},
		{"not found", "/nope", http.StatusNotFound, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			if resp.StatusCode != tt.code {
				t.Fatalf("status: got %d, want %d\n%s", resp.StatusCode, tt.code, body)
			}
			for _, want := range tt.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func TestAnalyzeRedirectsToCompare(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := get(t, srv, "/analyze?tickers=AAPL,MSFT&period=6mo")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/compare?period=6mo&tickers=AAPL%2CMSFT" {
		t.Errorf("unexpected location %q", loc)
	}
}

func TestCharts(t *testing.T) {
	srv, _ := newTestServer(t)
	pngMagic := []byte("\x89PNG\r\n\x1a\n")

	for _, path := range []string{"/chart/analysis.png?ticker=AAPL&period=3mo", "/chart/compare.png?tickers=AAPL,SPY"} {
		resp, body := get(t, srv, path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d: %s", path, resp.StatusCode, body)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: content type %q", path, ct)
		}
		if !bytes.HasPrefix([]byte(body), pngMagic) {
			t.Errorf("%s: body is not a PNG", path)
		}
	}

	resp, _ := get(t, srv, "/chart/analysis.png?ticker=NOPE")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown ticker chart: got %d", resp.StatusCode)
	}
}

func TestAPI(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/api/analysis?ticker=msft&period=1mo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analysis status %d: %s", resp.StatusCode, body)
	}
	var a struct {
		RunID    string `json:"run_id"`
		Rows     int    `json:"rows"`
		Analysis struct {
			Symbol string              `json:"symbol"`
			Trend  string              `json:"trend"`
			Latest map[string]*float64 `json:"latest"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if a.Analysis.Symbol != "MSFT" || a.Rows != 21 || a.RunID == "" {
		t.Errorf("unexpected analysis response %+v", a)
	}
	if v, ok := a.Analysis.Latest["sma_60"]; !ok || v != nil {
		t.Errorf("sma_60 should be present and null for 21 rows, got %v", v)
	}

	resp, body = get(t, srv, "/api/compare?tickers=AAPL,MSFT,NOPE&period=1mo")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("compare status %d: %s", resp.StatusCode, body)
	}
	var c struct {
		Table struct {
			Tickers    []string              `json:"tickers"`
			Normalized map[string][]*float64 `json:"normalized"`
		} `json:"table"`
		Failed []string `json:"failed"`
	}
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("decode compare: %v", err)
	}
	if strings.Join(c.Table.Tickers, ",") != "AAPL,MSFT" {
		t.Errorf("unexpected tickers %v", c.Table.Tickers)
	}
	if first := c.Table.Normalized["AAPL"][0]; first == nil || *first != 100 {
		t.Errorf("normalized series should start at 100, got %v", first)
	}
	if len(c.Failed) != 1 || !strings.HasPrefix(c.Failed[0], "NOPE") {
		t.Errorf("unexpected failures %v", c.Failed)
	}

	resp, body = get(t, srv, "/api/analysis?ticker=AAPL&period=weekly")
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, `"error"`) {
		t.Errorf("bad period: got %d %s", resp.StatusCode, body)
	}
}

func TestOutputs(t *testing.T) {
	srv, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "AAPL_report_20240628_180000.txt"), []byte("report"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, body := get(t, srv, "/outputs")
	if !strings.Contains(body, "AAPL_report_20240628_180000.txt") {
		t.Errorf("outputs page missing file:\n%s", body)
	}
	_, body = get(t, srv, "/outputs?pattern=*.png")
	if strings.Contains(body, "AAPL_report") {
		t.Error("pattern should filter out the report")
	}
	resp, _ := get(t, srv, "/outputs?pattern=[")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid pattern: got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Errorf("healthz: %d %s", resp.StatusCode, body)
	}
	get(t, srv, "/api/analysis?ticker=AAPL")

	_, body = get(t, srv, "/metrics")
	for _, want := range []string{
		`stockanalyzer_http_requests_total{code="200",route="GET /healthz"} 1`,
		`stockanalyzer_runs_total{kind="analysis",result="ok"} 1`,
		`stockanalyzer_fetch_total{result="ok",source="mock"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestSingleTickerInputIsNormalized(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := get(t, srv, "/api/analysis?tickers=aapl,")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var a struct {
		Analysis struct {
			Symbol string `json:"symbol"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.Analysis.Symbol != "AAPL" {
		t.Errorf("symbol: got %q, want AAPL", a.Analysis.Symbol)
	}

	resp, body = get(t, srv, "/analyze?tickers=+msft+,")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "<h2>MSFT") {
		t.Errorf("single view: got %d", resp.StatusCode)
	}
	resp, _ = get(t, srv, "/chart/analysis.png?tickers=aapl,")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("chart: got %d", resp.StatusCode)
	}

	for _, path := range []string{"/api/analysis?tickers=,", "/chart/analysis.png?tickers=+,+"} {
		if resp, _ := get(t, srv, path); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", path, resp.StatusCode)
		}
	}
}
