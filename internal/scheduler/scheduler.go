package scheduler

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/notifier"
	"StockAnalyzer/internal/watch"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the watchlist analysis on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *analyzer.Runner
	Watch    *watch.Manager
	Notifier *notifier.TelegramNotifier
	Tickers  []string
	Period   string
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. A run that is still going when the
// next tick fires causes that tick to be skipped.
func NewScheduler(ctx context.Context, r *analyzer.Runner, wm *watch.Manager, tn *notifier.TelegramNotifier, tickers []string, period string) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Runner:   r,
		Watch:    wm,
		Notifier: tn,
		Tickers:  tickers,
		Period:   period,
		Ctx:      ctx,
	}
}

// Register adds the watchlist job under a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if len(s.Tickers) == 0 {
		return fmt.Errorf("register watchlist task: no tickers configured")
	}
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "tickers", s.Tickers, "period", s.Period)
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunNow analyzes every watched ticker, compares them when there are at
// least two, and returns the messages it produced. Messages are also sent to
// Telegram when a notifier is configured.
func (s *Scheduler) RunNow() []string {
	log := slog.With("task", "watchlist")
	log.Info("running watchlist task", "tickers", len(s.Tickers))

	var msgs []string
	for _, sym := range s.Tickers {
		if s.Ctx.Err() != nil {
			break
		}
		res, err := s.Runner.Analyze(s.Ctx, sym, s.Period)
		if err != nil {
			log.Error("analyze", "symbol", sym, "error", err)
			msgs = append(msgs, fmt.Sprintf("❌ %s: %s", html.EscapeString(sym), html.EscapeString(err.Error())))
			continue
		}
		msg := notifier.FormatTelegramSummary(res.Analysis, res.GeneratedAt)
		if s.Watch != nil {
			if changes := s.Watch.Update(res.Analysis, res.GeneratedAt); len(changes) > 0 {
				msg += "\n🔔 <b>Changed</b>\n• " + html.EscapeString(strings.Join(changes, "\n• ")) + "\n"
			}
		}
		msgs = append(msgs, msg)
	}

	if len(s.Tickers) >= 2 && s.Ctx.Err() == nil {
		res, err := s.Runner.Compare(s.Ctx, s.Tickers, s.Period)
		if err != nil {
			log.Warn("compare", "error", err)
		} else {
			msgs = append(msgs, "📈 <b>Comparison</b> | "+html.EscapeString(s.Period)+"\n<pre>"+html.EscapeString(res.Summary)+"</pre>")
		}
	}

	for _, m := range msgs {
		s.trySend(m)
	}
	log.Info("watchlist task finished", "messages", len(msgs))
	return msgs
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		slog.Error("send notification", "error", err)
	}
}
