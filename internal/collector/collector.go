package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"StockAnalyzer/internal/metrics"
	"StockAnalyzer/internal/model"
)

// DefaultMinInterval spaces consecutive upstream requests.
const DefaultMinInterval = 2 * time.Second

// Collector turns a (symbol, period) request into a PriceSeries. It validates
// the inputs, serves repeated requests from the cache and throttles upstream
// calls. Safe for concurrent use.
type Collector struct {
	Fetcher Fetcher
	Cache   Cache // optional
	Limiter *rate.Limiter
	Metrics *metrics.Metrics // optional

	now func() time.Time
}

// NewCollector creates a Collector allowing one upstream request per minInterval.
// A non-positive minInterval disables throttling.
func NewCollector(fetcher Fetcher, cache Cache, minInterval time.Duration, m *metrics.Metrics) *Collector {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Collector{
		Fetcher: fetcher,
		Cache:   cache,
		Limiter: rate.NewLimiter(limit, 1),
		Metrics: m,
		now:     time.Now,
	}
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// ParseTickers splits a comma-separated ticker list, dropping blanks and duplicates.
func ParseTickers(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		sym := NormalizeSymbol(part)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// Fetch returns the price history of symbol over period.
func (c *Collector) Fetch(ctx context.Context, symbol string, period string) (*model.PriceSeries, error) {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	sym := NormalizeSymbol(symbol)
	if sym == "" {
		return nil, &model.InvalidTickerError{Symbol: symbol, Err: errors.New("empty symbol")}
	}

	key := cacheKey(c.Fetcher.Name(), sym, p)
	if c.Cache != nil {
		if bars, ok := c.Cache.Get(ctx, key); ok {
			c.Metrics.ObserveCache(true)
			slog.Debug("price history served from cache", "symbol", sym, "period", p)
			return c.build(sym, p, bars)
		}
		c.Metrics.ObserveCache(false)
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	start := time.Now()
	bars, err := c.Fetcher.FetchHistory(ctx, sym, p)
	c.Metrics.ObserveFetch(c.Fetcher.Name(), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sym, err)
	}
	slog.Info("price history fetched", "symbol", sym, "period", p, "rows", len(bars), "source", c.Fetcher.Name())

	if c.Cache != nil && len(bars) > 0 {
		c.Cache.Set(ctx, key, bars)
	}
	return c.build(sym, p, bars)
}

func (c *Collector) build(sym string, p model.Period, bars []model.OHLCV) (*model.PriceSeries, error) {
	if len(bars) == 0 {
		return nil, &model.EmptyInputError{Symbol: sym}
	}
	return model.NewPriceSeries(sym, p, bars, c.now()), nil
}
