package compare

import (
	"errors"
	"testing"
	"time"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/model"
)

var day0 = time.Date(2024, 6, 3, 13, 30, 0, 0, time.UTC)

// input builds a ticker whose bars fall on the given day offsets from day0.
func input(t *testing.T, symbol string, days []int, closes []float64) Input {
	t.Helper()
	bars := make([]model.OHLCV, len(days))
	for i, d := range days {
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, d), Open: closes[i], High: closes[i], Low: closes[i], Close: closes[i], Volume: 1}
	}
	series := model.NewPriceSeries(symbol, model.Period1Mo, bars, day0)
	set, err := calculator.Compute(series, calculator.DefaultParams())
	if err != nil {
		t.Fatalf("compute %s: %v", symbol, err)
	}
	return Input{Series: series, Indicators: set}
}

func TestAggregate_SingleTickerIsInsufficient(t *testing.T) {
	_, err := Aggregate([]Input{input(t, "AAPL", []int{0, 1}, []float64{1, 2})}, "rsi_14")
	var ie *model.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ie.Have != 1 || ie.Need != 2 {
		t.Errorf("unexpected counts: %+v", ie)
	}
}

func TestAggregate_SkipsEmptySeries(t *testing.T) {
	empty := Input{Series: model.NewPriceSeries("NONE", model.Period1Mo, nil, day0)}
	_, err := Aggregate([]Input{input(t, "AAPL", []int{0, 1}, []float64{1, 2}), empty}, "rsi_14")
	var ie *model.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestAggregate_IntersectionAndNormalization(t *testing.T) {
	a := input(t, "AAA", []int{0, 1, 2, 3, 4}, []float64{50, 55, 60, 40, 45})
	// BBB is missing day 0 and day 3, and has an extra day 5
	b := input(t, "BBB", []int{1, 2, 4, 5}, []float64{200, 220, 180, 190})

	table, err := Aggregate([]Input{a, b}, "rsi_14")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(table.Dates) != 3 {
		t.Fatalf("expected 3 shared dates, got %d", len(table.Dates))
	}
	wantDays := []int{1, 2, 4}
	for i, d := range wantDays {
		want := time.Date(2024, 6, 3+d, 0, 0, 0, 0, time.UTC)
		if !table.Dates[i].Equal(want) {
			t.Errorf("date %d: got %s, want %s", i, table.Dates[i], want)
		}
	}

	for _, sym := range []string{"AAA", "BBB"} {
		norm := table.Normalized[sym]
		if len(norm) != 3 {
			t.Fatalf("%s: expected 3 rows, got %d", sym, len(norm))
		}
		if !norm[0].Valid || norm[0].Float64 != BaseValue {
			t.Errorf("%s: first normalized value = %v, want exactly %v", sym, norm[0], BaseValue)
		}
		if c := table.Cumulative[sym][0]; !c.Valid || c.Float64 != 0 {
			t.Errorf("%s: first cumulative return = %v, want 0", sym, c)
		}
	}

	// AAA: 55 -> 60 -> 45
	if got := table.Normalized["AAA"][2].Float64; got < 81.81 || got > 81.82 {
		t.Errorf("AAA last normalized: got %.4f", got)
	}
	// BBB: 200 -> 220 -> 180
	if got := table.Normalized["BBB"][1].Float64; got < 109.99 || got > 110.01 {
		t.Errorf("BBB normalized[1]: got %.4f", got)
	}

	// daily return comes from the full history: AAA day 4 is 40 -> 45
	if r := table.DailyReturn["AAA"][2]; !r.Valid || r.Float64 < 12.49 || r.Float64 > 12.51 {
		t.Errorf("AAA daily return at day 4: got %v", r)
	}
	// BBB day 1 is its first bar, so no return
	if r := table.DailyReturn["BBB"][0]; r.Valid {
		t.Errorf("BBB first daily return should be undefined, got %v", r)
	}

	if len(table.Summaries) != 2 || table.Summaries[1].Symbol != "BBB" || table.Summaries[1].LatestClose != 180 {
		t.Errorf("unexpected summaries: %+v", table.Summaries)
	}
	if got := table.Summaries[1].PeriodReturn; got > -9.99 || got < -10.01 {
		t.Errorf("BBB period return: got %.4f, want -10", got)
	}
}

func TestAggregate_NoSharedDates(t *testing.T) {
	a := input(t, "AAA", []int{0, 1}, []float64{1, 2})
	b := input(t, "BBB", []int{5, 6}, []float64{1, 2})
	_, err := Aggregate([]Input{a, b}, "rsi_14")
	var ie *model.InsufficientDataError
	if !errors.As(err, &ie) || ie.Reason == "" {
		t.Fatalf("expected InsufficientDataError with reason, got %v", err)
	}
}

func TestAggregate_DuplicateTickerCountsOnce(t *testing.T) {
	a := input(t, "AAA", []int{0, 1}, []float64{1, 2})
	_, err := Aggregate([]Input{a, a}, "rsi_14")
	var ie *model.InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}
