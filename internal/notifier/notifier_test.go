package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/guregu/null/v6"

	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
)

var genTime = time.Date(2024, 7, 1, 9, 30, 5, 0, time.UTC)

func sampleAnalysis() *model.Analysis {
	return &model.Analysis{
		Symbol:   "AAPL",
		Period:   model.Period3Mo,
		ShortSMA: "sma_10",
		LongSMA:  "sma_30",
		RSIName:  "rsi_14",
		VolName:  "volatility_20",
		Stats: model.Stats{
			LatestClose:  214.29,
			PrevClose:    210.5,
			Change:       3.79,
			ChangePct:    1.8004,
			PeriodReturn: -2.345,
			High:         220.1,
			Low:          165,
			AvgVolume:    52345678.4,
			Rows:         63,
		},
		Latest: map[string]null.Float{
			"sma_10":                  null.FloatFrom(211.456),
			"sma_30":                  null.FloatFrom(200),
			"volatility_20":           null.FloatFrom(4.321),
			"rsi_14":                  null.FloatFrom(71.239),
			model.IndicatorMACD:       null.FloatFrom(1.23456),
			model.IndicatorMACDSignal: null.FloatFrom(0.5),
			model.IndicatorMACDHist:   null.FloatFrom(0.73456),
			model.IndicatorBBUpper:    null.FloatFrom(225),
			model.IndicatorBBMiddle:   null.FloatFrom(211.456),
		},
		Trend:     model.TrendUp,
		Strength:  model.StrengthStrongUp,
		RSIZone:   model.ZoneOverbought,
		Crossover: model.CrossNone,
		MACDBias:  model.CrossBullish,
	}
}

func TestFormatReport(t *testing.T) {
	report := FormatReport(sampleAnalysis(), genTime)

	wants := []string{
		"AAPL Technical Analysis Report",
		"Period         : 3mo",
		"Latest close   : $214.29",
		"Change         : +3.79 (+1.80%)",
		"Period return  : -2.35%",
		"Avg volume     : 52,345,678",
		"SMA_10         : $211.46",
		"SMA_30         : $200.00",
		"Volatility     : 4.32",
		"Trend          : up",
		"Strength       : strong uptrend",
		"Upper          : $225.00",
		"Lower          : n/a",
		"RSI_14         : 71.24",
		"Zone           : overbought",
		"MACD           : 1.2346",
		"Histogram      : 0.7346",
		"Bias           : bullish",
		"Crossover      : none",
		"not investment advice",
		"Generated: 2024-07-01 09:30:05",
	}
	for _, w := range wants {
		if !strings.Contains(report, w) {
			t.Errorf("report missing %q\n%s", w, report)
		}
	}

	if again := FormatReport(sampleAnalysis(), genTime); again != report {
		t.Error("report is not deterministic")
	}
}

func TestFormatComparisonSummary(t *testing.T) {
	out := FormatComparisonSummary([]compare.Summary{
		{Symbol: "AAPL", LatestClose: 100, PeriodReturn: 5.5, RSI: null.FloatFrom(55.55)},
		{Symbol: "MSFT", LatestClose: 400.123, PeriodReturn: -1, RSI: null.Float{}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "$100.00") || !strings.Contains(lines[2], "+5.50%") || !strings.Contains(lines[2], "55.6") {
		t.Errorf("unexpected AAPL row: %q", lines[2])
	}
	if !strings.Contains(lines[3], "-1.00%") || !strings.HasSuffix(lines[3], "n/a") {
		t.Errorf("unexpected MSFT row: %q", lines[3])
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"0":        "0",
		"999":      "999",
		"1000":     "1,000",
		"1234567":  "1,234,567",
		"-1234567": "-1,234,567",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	if err := n.Send(context.Background(), "<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	err := n.SendWithRetry(context.Background(), "x", 0)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status 500 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestEnabled(t *testing.T) {
	if (&TelegramNotifier{BotToken: "t"}).Enabled() {
		t.Error("missing chat id should disable")
	}
	if !NewTelegramNotifier("t", "c", "").Enabled() {
		t.Error("token and chat should enable")
	}
}

func TestCommandHandler(t *testing.T) {
	var gotSymbol string
	var gotPeriod model.Period
	analyze := func(_ context.Context, symbol string, period model.Period) (*model.Analysis, error) {
		gotSymbol, gotPeriod = symbol, period
		if symbol == "NOPE" {
			return nil, &model.InvalidTickerError{Symbol: symbol, Err: errors.New("not found")}
		}
		a := sampleAnalysis()
		a.Symbol, a.Period = symbol, period
		return a, nil
	}
	h := NewCommandHandler(analyze, func() time.Time { return genTime })
	ctx := context.Background()

	if reply := h(ctx, "/help"); !strings.Contains(reply, "/analyze TICKER [PERIOD]") {
		t.Errorf("unexpected help: %q", reply)
	}

	reply := h(ctx, "/analyze msft")
	if gotSymbol != "MSFT" || gotPeriod != model.DefaultPeriod {
		t.Errorf("analyze called with %s %s", gotSymbol, gotPeriod)
	}
	if !strings.Contains(reply, "<b>MSFT</b> | 1mo | 2024-07-01") {
		t.Errorf("unexpected reply: %q", reply)
	}

	h(ctx, "/analyze@StockBot AAPL 6mo")
	if gotSymbol != "AAPL" || gotPeriod != model.Period6Mo {
		t.Errorf("analyze called with %s %s", gotSymbol, gotPeriod)
	}

	if reply := h(ctx, "/analyze AAPL 6m"); !strings.Contains(reply, "did you mean") {
		t.Errorf("expected period suggestion, got %q", reply)
	}
	if reply := h(ctx, "/analyze NOPE"); !strings.Contains(reply, "invalid ticker") {
		t.Errorf("expected ticker error, got %q", reply)
	}
	if reply := h(ctx, "/analyze"); !strings.HasPrefix(reply, "Usage") {
		t.Errorf("expected usage, got %q", reply)
	}
	if reply := h(ctx, "/bogus"); !strings.Contains(reply, "Unknown command") {
		t.Errorf("expected unknown command reply, got %q", reply)
	}
	if reply := h(ctx, "hello"); reply != "" {
		t.Errorf("plain text should be ignored, got %q", reply)
	}
}
