package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"StockAnalyzer/internal/compare"
	"StockAnalyzer/internal/model"
)

const (
	ruleWide   = 60
	ruleNarrow = 40
	notAvail   = "n/a"
)

// FormatReport renders the plain-text analysis report for one ticker.
// The output depends only on its arguments.
func FormatReport(a *model.Analysis, generatedAt time.Time) string {
	var b strings.Builder
	wide := strings.Repeat("═", ruleWide)
	st := a.Stats

	b.WriteString("\n" + wide + "\n")
	b.WriteString(fmt.Sprintf("  %s Technical Analysis Report\n", a.Symbol))
	b.WriteString(wide + "\n")

	section(&b, "Overview")
	line(&b, "Ticker", a.Symbol)
	line(&b, "Period", string(a.Period))
	line(&b, "Rows", fmt.Sprintf("%d", st.Rows))
	line(&b, "Latest close", price(st.LatestClose))
	line(&b, "Change", fmt.Sprintf("%s (%s%%)", signed(st.Change, 2), signed(st.ChangePct, 2)))
	line(&b, "Period high", price(st.High))
	line(&b, "Period low", price(st.Low))
	line(&b, "Period return", signed(st.PeriodReturn, 2)+"%")
	line(&b, "Avg volume", groupThousands(decimal.NewFromFloat(st.AvgVolume).Round(0).String()))

	section(&b, "Moving averages")
	line(&b, strings.ToUpper(a.ShortSMA), nullPrice(a.Latest[a.ShortSMA]))
	line(&b, strings.ToUpper(a.LongSMA), nullPrice(a.Latest[a.LongSMA]))
	line(&b, "Volatility", nullFixed(a.Latest[a.VolName], 2))
	line(&b, "Trend", string(a.Trend))
	line(&b, "Strength", string(a.Strength))

	section(&b, "Bollinger bands")
	line(&b, "Upper", nullPrice(a.Latest[model.IndicatorBBUpper]))
	line(&b, "Middle", nullPrice(a.Latest[model.IndicatorBBMiddle]))
	line(&b, "Lower", nullPrice(a.Latest[model.IndicatorBBLower]))

	section(&b, "RSI")
	line(&b, strings.ToUpper(a.RSIName), nullFixed(a.Latest[a.RSIName], 2))
	line(&b, "Zone", string(a.RSIZone))

	section(&b, "MACD")
	line(&b, "MACD", nullFixed(a.Latest[model.IndicatorMACD], 4))
	line(&b, "Signal", nullFixed(a.Latest[model.IndicatorMACDSignal], 4))
	line(&b, "Histogram", nullFixed(a.Latest[model.IndicatorMACDHist], 4))
	line(&b, "Bias", string(a.MACDBias))
	line(&b, "Crossover", string(a.Crossover))

	section(&b, "How to read")
	b.WriteString(fmt.Sprintf("  - SMA  : %s above %s means an uptrend\n", a.ShortSMA, a.LongSMA))
	b.WriteString("  - RSI  : above 70 overbought, below 30 oversold\n")
	b.WriteString("  - MACD : crossing above the signal line is a buy signal\n")

	section(&b, "Disclaimer")
	b.WriteString("  This analysis is for educational purposes only and is not investment advice.\n")
	b.WriteString("  Past performance does not guarantee future results.\n")

	b.WriteString("\n" + wide + "\n")
	b.WriteString(fmt.Sprintf("  Generated: %s\n", generatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(wide + "\n")
	return b.String()
}

// FormatComparisonSummary renders the per-ticker comparison table.
func FormatComparisonSummary(summaries []compare.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %-10s %12s %12s %8s\n", "Ticker", "Close", "Return", "RSI"))
	b.WriteString("  " + strings.Repeat("─", 45) + "\n")
	for _, s := range summaries {
		b.WriteString(fmt.Sprintf("  %-10s %12s %12s %8s\n",
			s.Symbol, price(s.LatestClose), signed(s.PeriodReturn, 2)+"%", nullFixed(s.RSI, 1)))
	}
	return b.String()
}

// FormatTelegramSummary formats a short HTML message for Telegram.
func FormatTelegramSummary(a *model.Analysis, generatedAt time.Time) string {
	var b strings.Builder
	st := a.Stats
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s | %s\n\n",
		html.EscapeString(a.Symbol), a.Period, generatedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Close: %s (%s%%)\n", price(st.LatestClose), signed(st.ChangePct, 2)))
	b.WriteString(fmt.Sprintf("Period return: %s%%\n", signed(st.PeriodReturn, 2)))
	b.WriteString(fmt.Sprintf("Trend: %s (%s)\n", a.Trend, a.Strength))
	b.WriteString(fmt.Sprintf("%s: %s (%s)\n", strings.ToUpper(a.RSIName), nullFixed(a.Latest[a.RSIName], 2), a.RSIZone))
	b.WriteString(fmt.Sprintf("MACD: %s, crossover %s\n", a.MACDBias, a.Crossover))
	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n  " + title + "\n")
	b.WriteString("  " + strings.Repeat("─", ruleNarrow) + "\n")
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(fmt.Sprintf("  %-15s: %s\n", label, value))
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func price(v float64) string { return "$" + fixed(v, 2) }

func signed(v float64, places int32) string {
	s := fixed(v, places)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

func nullFixed(v null.Float, places int32) string {
	if !v.Valid {
		return notAvail
	}
	return fixed(v.Float64, places)
}

func nullPrice(v null.Float) string {
	if !v.Valid {
		return notAvail
	}
	return price(v.Float64)
}

// groupThousands inserts commas into an integer string.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
