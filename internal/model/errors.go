package model

import (
	"fmt"
	"strings"
)

// InvalidTickerError reports an unknown or unreachable symbol.
type InvalidTickerError struct {
	Symbol string
	Err    error
}

func (e *InvalidTickerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid ticker %q: %v", e.Symbol, e.Err)
	}
	return fmt.Sprintf("invalid ticker %q", e.Symbol)
}

func (e *InvalidTickerError) Unwrap() error { return e.Err }

// InvalidPeriodError reports an unsupported period token.
type InvalidPeriodError struct {
	Period     string
	Suggestion Period
}

func (e *InvalidPeriodError) Error() string {
	valid := make([]string, len(ValidPeriods))
	for i, p := range ValidPeriods {
		valid[i] = string(p)
	}
	msg := fmt.Sprintf("invalid period %q (valid: %s)", e.Period, strings.Join(valid, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

// EmptyInputError reports a price series with no rows.
type EmptyInputError struct {
	Symbol string
}

func (e *EmptyInputError) Error() string {
	if e.Symbol == "" {
		return "empty price series"
	}
	return fmt.Sprintf("no price data for %s", e.Symbol)
}

// InsufficientDataError reports a comparison with fewer than two usable series.
type InsufficientDataError struct {
	Have   int
	Need   int
	Reason string
}

func (e *InsufficientDataError) Error() string {
	if e.Reason != "" {
		return "insufficient data: " + e.Reason
	}
	return fmt.Sprintf("insufficient data: need at least %d tickers with data, got %d", e.Need, e.Have)
}
