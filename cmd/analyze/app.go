package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"StockAnalyzer/internal/analyzer"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/config"
	"StockAnalyzer/internal/logger"
	"StockAnalyzer/internal/metrics"
	"StockAnalyzer/internal/recorder"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	outputDir  string
	export     string
	logLevel   string
}

// app holds the wired dependencies for one command invocation.
type app struct {
	cfg       *config.Config
	metrics   *metrics.Metrics
	collector *collector.Collector
	closers   []func() error
}

func newApp(opts *options) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	path := opts.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.export != "" {
		cfg.Output.Export = opts.export
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger.Init("stockanalyzer", cfg.Log.Level, cfg.Log.Format)

	a := &app{cfg: cfg, metrics: metrics.New()}

	var fetcher collector.Fetcher
	ds := cfg.DataSource
	switch strings.ToLower(ds.Provider) {
	case "rest":
		fetcher = collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, ds.Proxy, ds.Timeout)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(ds.BaseURL, ds.Proxy, ds.Timeout)
	}
	slog.Debug("data source", "provider", fetcher.Name())

	var cache collector.Cache
	if cfg.Cache.RedisAddr != "" {
		rc, err := collector.NewRedisCache(collector.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			slog.Warn("redis cache unavailable, using memory cache", "error", err)
		} else {
			cache = rc
			a.closers = append(a.closers, rc.Close)
		}
	}
	if cache == nil {
		cache = collector.NewMemoryCache(cfg.Cache.TTL)
	}

	a.collector = collector.NewCollector(fetcher, cache, ds.MinInterval, a.metrics)
	return a, nil
}

// fileRunner returns a runner that writes outputs into the configured
// directory. The recorder is closed with the app.
func (a *app) fileRunner() (*analyzer.Runner, error) {
	rec, err := recorder.NewFileRecorder(a.cfg.Output.Dir, a.cfg.Output.Export)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rec.Close)
	return analyzer.NewRunner(a.collector, a.cfg.Indicators, rec, a.metrics), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close", "error", err)
		}
	}
}
