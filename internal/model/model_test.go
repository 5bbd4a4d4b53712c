package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewPriceSeries_SortsAndDeduplicates(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	bars := []OHLCV{
		{Time: t0.AddDate(0, 0, 2), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.AddDate(0, 0, 1), Close: 2},
		{Time: t0.AddDate(0, 0, 1), Close: 22},
	}
	s := NewPriceSeries("AAPL", Period1Mo, bars, t0)
	if s.Len() != 3 {
		t.Fatalf("expected 3 bars, got %d", s.Len())
	}
	closes := s.Closes()
	want := []float64{1, 22, 3}
	for i := range want {
		if closes[i] != want[i] {
			t.Errorf("close[%d]: got %.0f, want %.0f", i, closes[i], want[i])
		}
	}
	// the input slice is untouched
	if bars[0].Close != 3 {
		t.Error("NewPriceSeries mutated its input")
	}
	// Bars returns a copy
	b := s.Bars()
	b[0].Close = 99
	if s.Bar(0).Close != 1 {
		t.Error("Bars() exposed internal storage")
	}
}

func TestParsePeriod(t *testing.T) {
	for _, p := range ValidPeriods {
		got, err := ParsePeriod(strings.ToUpper(string(p)))
		if err != nil || got != p {
			t.Errorf("ParsePeriod(%q) = %q, %v", p, got, err)
		}
	}

	_, err := ParsePeriod("3m")
	var perr *InvalidPeriodError
	if !errors.As(err, &perr) {
		t.Fatalf("expected InvalidPeriodError, got %v", err)
	}
	if perr.Suggestion != Period3Mo {
		t.Errorf("expected suggestion 3mo, got %q", perr.Suggestion)
	}
	if !strings.Contains(err.Error(), `did you mean "3mo"`) {
		t.Errorf("unexpected message: %s", err)
	}

	_, err = ParsePeriod("10y")
	if !errors.As(err, &perr) || perr.Suggestion != "" {
		t.Errorf("expected InvalidPeriodError without suggestion, got %v", err)
	}
}

func TestInvalidTickerError_Unwrap(t *testing.T) {
	cause := errors.New("status 404")
	err := error(&InvalidTickerError{Symbol: "ZZZZ", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("expected InvalidTickerError to unwrap its cause")
	}
}

func TestSeries_UndefinedEncodesAsNull(t *testing.T) {
	s := Series{{}, Value(1.5)}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[null,1.5]" {
		t.Errorf("got %s", data)
	}
}

func TestIndicatorSet(t *testing.T) {
	set := NewIndicatorSet(2)
	set.Put("b", Series{{}, Value(2)})
	set.Put("a", Series{Value(1), Value(3)})

	if names := set.Names(); names[0] != "b" || names[1] != "a" {
		t.Errorf("expected insertion order, got %v", names)
	}
	if v := set.Latest("a"); !v.Valid || v.Float64 != 3 {
		t.Errorf("latest a: %v", v)
	}
	if v := set.At("b", 0); v.Valid {
		t.Error("b[0] should be undefined")
	}
	if v := set.Latest("missing"); v.Valid {
		t.Error("missing indicator should be undefined")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	set.Put("bad", Series{Value(1)})
}
