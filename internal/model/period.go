package model

import "strings"

// Period is a Yahoo-style lookback range token.
type Period string

const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	PeriodMax Period = "max"
)

// DefaultPeriod is used when no period is given.
const DefaultPeriod = Period1Mo

// ValidPeriods lists the accepted tokens in display order.
var ValidPeriods = []Period{
	Period1D, Period5D, Period1Mo, Period3Mo, Period6Mo, Period1Y, Period2Y, Period5Y, PeriodMax,
}

var periodSuggestions = map[string]Period{
	"1m": Period1Mo,
	"3m": Period3Mo,
	"6m": Period6Mo,
}

// ParsePeriod validates a period token.
func ParsePeriod(s string) (Period, error) {
	tok := strings.ToLower(strings.TrimSpace(s))
	for _, p := range ValidPeriods {
		if string(p) == tok {
			return p, nil
		}
	}
	return "", &InvalidPeriodError{Period: s, Suggestion: periodSuggestions[tok]}
}

func (p Period) String() string { return string(p) }

// TradingDays is the approximate number of daily bars the period covers.
func (p Period) TradingDays() int {
	switch p {
	case Period1D:
		return 1
	case Period5D:
		return 5
	case Period1Mo:
		return 21
	case Period3Mo:
		return 63
	case Period6Mo:
		return 126
	case Period1Y:
		return 252
	case Period2Y:
		return 504
	case Period5Y:
		return 1260
	default:
		return 2520
	}
}
