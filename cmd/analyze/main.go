// analyze - technical analysis charts and reports for stock tickers
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/dashboard"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/notifier"
	"StockAnalyzer/internal/scheduler"
	"StockAnalyzer/internal/watch"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "analyze <TICKER[,TICKER...]> [PERIOD]",
		Short: "Technical analysis for stock tickers",
		Long: `analyze fetches daily price history, computes moving averages, RSI, MACD
and Bollinger bands, and writes a chart and a text report.

With one ticker it analyzes that ticker. With several comma-separated tickers
it compares them on their shared trading days.

PERIOD is one of 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max (default 1mo).`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			period := string(model.DefaultPeriod)
			if len(args) == 2 {
				period = args[1]
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, args[0], period)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default configs/config.yaml or CONFIG_PATH)")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "Output directory")
	flags.StringVar(&opts.export, "export", "", "Indicator export format: none, csv, json or parquet")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(dashboardCmd(opts))
	rootCmd.AddCommand(scheduleCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func runAnalyze(ctx context.Context, out io.Writer, opts *options, tickerArg, period string) error {
	tickers := collector.ParseTickers(tickerArg)
	if len(tickers) == 0 {
		return fmt.Errorf("no ticker given")
	}
	// fail on a bad period before touching config or the network
	if _, err := model.ParsePeriod(period); err != nil {
		return err
	}

	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()
	runner, err := a.fileRunner()
	if err != nil {
		return err
	}

	if len(tickers) == 1 {
		res, err := runner.Analyze(ctx, tickers[0], period)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Report)
		printOutputs(out, res.Outputs.Chart, res.Outputs.Report, res.Outputs.Export)
		return nil
	}

	res, err := runner.Compare(ctx, tickers, period)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Summary)
	for _, f := range res.Failed {
		fmt.Fprintf(out, "Skipped %s\n", f.Error())
	}
	printOutputs(out, res.Outputs.Chart, res.Outputs.Report, res.Outputs.Export)
	return nil
}

func printOutputs(out io.Writer, paths ...string) {
	for _, p := range paths {
		if p != "" {
			fmt.Fprintf(out, "Saved %s\n", p)
		}
	}
}

func dashboardCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve the web dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.Dashboard.Addr
			}

			runner := analyzer.NewRunner(a.collector, a.cfg.Indicators, nil, a.metrics)
			srv, err := dashboard.NewServer(runner, a.metrics, a.cfg.Output.Dir)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func scheduleCmd(opts *options) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the watchlist analysis on a cron schedule",
		Long: `schedule analyzes the configured tickers on the configured cron expression,
writes the usual outputs and, when Telegram is configured, sends a summary of
each ticker and of what changed since the previous run. The bot also answers
/analyze TICKER [PERIOD].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			runner, err := a.fileRunner()
			if err != nil {
				return err
			}
			wm, err := watch.NewManager(cfg.WatchStateFile())
			if err != nil {
				return err
			}
			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sched := scheduler.NewScheduler(ctx, runner, wm, tn, cfg.Schedule.Tickers, cfg.Schedule.Period)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn.Enabled() {
				go tn.StartPolling(ctx, notifier.NewCommandHandler(runner.Evaluate, nil))
				slog.Info("telegram polling started")
			} else {
				slog.Warn("telegram not configured, reports are written to disk only")
			}

			if runNow || os.Getenv("RUN_ON_START") == "true" {
				go sched.RunNow()
			}

			slog.Info("scheduler running, press Ctrl+C to stop", "cron", cfg.Schedule.Cron)
			<-ctx.Done()
			slog.Info("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run the watchlist once at startup (also RUN_ON_START=true)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "analyze version %s\n", version)
		},
	}
}
