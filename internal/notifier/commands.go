package notifier

import (
	"context"
	"html"
	"strings"
	"time"

	"StockAnalyzer/internal/model"
)

// AnalyzeFunc runs a single-ticker analysis for a bot command.
type AnalyzeFunc func(ctx context.Context, symbol string, period model.Period) (*model.Analysis, error)

const helpText = `<b>StockAnalyzer bot</b>

/analyze TICKER [PERIOD] - technical summary for one ticker
/help - this message

PERIOD is one of 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max (default 1mo).`

// NewCommandHandler answers /analyze and /help. now supplies the report date.
func NewCommandHandler(analyze AnalyzeFunc, now func() time.Time) CommandHandler {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, command string) string {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			return ""
		}
		// "/analyze@MyBot" in group chats
		name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
		args := fields[1:]

		switch name {
		case "/help", "/start":
			return helpText
		case "/analyze":
			if len(args) == 0 || len(args) > 2 {
				return "Usage: /analyze TICKER [PERIOD]"
			}
			period := model.DefaultPeriod
			if len(args) == 2 {
				p, err := model.ParsePeriod(args[1])
				if err != nil {
					return "❌ " + html.EscapeString(err.Error())
				}
				period = p
			}
			a, err := analyze(ctx, strings.ToUpper(args[0]), period)
			if err != nil {
				return "❌ " + html.EscapeString(err.Error())
			}
			return FormatTelegramSummary(a, now())
		default:
			if strings.HasPrefix(name, "/") {
				return "Unknown command. Send /help for usage."
			}
			return ""
		}
	}
}
