package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"StockAnalyzer/internal/calculator"
	"StockAnalyzer/internal/collector"
	"StockAnalyzer/internal/model"
	"StockAnalyzer/internal/recorder"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider    string        `yaml:"provider"` // yahoo, rest or mock
		BaseURL     string        `yaml:"base_url"`
		APIKey      string        `yaml:"api_key"`
		Proxy       string        `yaml:"proxy"`
		MinInterval time.Duration `yaml:"min_interval"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Indicators calculator.Params `yaml:"indicators"`
	Output     struct {
		Dir    string `yaml:"dir"`
		Export string `yaml:"export"` // none, csv, json or parquet
	} `yaml:"output"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
	} `yaml:"cache"`
	Dashboard struct {
		Addr string `yaml:"addr"`
	} `yaml:"dashboard"`
	Schedule struct {
		Cron    string   `yaml:"cron"`
		Tickers []string `yaml:"tickers"`
		Period  string   `yaml:"period"`
		// StateFile keeps the last signals per ticker between runs. Empty
		// means watch_state.json in the output directory.
		StateFile string `yaml:"state_file"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// without overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// indicator params merge field by field with the file
	cfg.Indicators = calculator.DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.DataSource.Proxy = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("EXPORT_FORMAT"); v != "" {
		cfg.Output.Export = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("SCHEDULE_TICKERS"); v != "" {
		cfg.Schedule.Tickers = collector.ParseTickers(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.MinInterval == 0 {
		cfg.DataSource.MinInterval = collector.DefaultMinInterval
	}
	if cfg.DataSource.Timeout == 0 {
		cfg.DataSource.Timeout = 30 * time.Second
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Output.Export == "" {
		cfg.Output.Export = "none"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = collector.DefaultCacheTTL
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = ":8080"
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 30 16 * * 1-5"
	}
	if cfg.Schedule.Period == "" {
		cfg.Schedule.Period = string(model.DefaultPeriod)
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	return cfg, nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DataSource.Provider) {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider must be yahoo, rest or mock, got %q", c.DataSource.Provider)
	}
	if c.DataSource.MinInterval < 0 {
		return fmt.Errorf("data_source.min_interval must not be negative")
	}
	if err := c.Indicators.Validate(); err != nil {
		return fmt.Errorf("indicators: %w", err)
	}
	if _, err := recorder.NewExporter(c.Output.Export); err != nil {
		return fmt.Errorf("output.export: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if _, err := model.ParsePeriod(c.Schedule.Period); err != nil {
		return fmt.Errorf("schedule.period: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// WatchStateFile returns the configured state file, or watch_state.json in
// the output directory. It is resolved on use so that an output directory
// set after Load still applies.
func (c *Config) WatchStateFile() string {
	if c.Schedule.StateFile != "" {
		return c.Schedule.StateFile
	}
	return filepath.Join(c.Output.Dir, "watch_state.json")
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
