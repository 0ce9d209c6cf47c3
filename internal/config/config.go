package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultStocks is the watchlist used when none is configured.
var DefaultStocks = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "META", "NVDA", "NFLX", "AMD", "INTC", "ORCL", "IBM"}

// Known fetcher names for the source chains.
var (
	quoteSourceNames  = map[string]bool{"alphavantage": true, "financego": true}
	candleSourceNames = map[string]bool{"table": true, "yahoo": true, "alphavantage": true, "financego": true}
)

// Config holds all application configuration.
type Config struct {
	Dashboard struct {
		Stocks      []string `yaml:"stocks"`
		ChartSymbol string   `yaml:"chart_symbol"`
		ChartDays   int      `yaml:"chart_days"`
		NewsLimit   int      `yaml:"news_limit"`
		MostActive  int      `yaml:"most_active"`
	} `yaml:"dashboard"`
	DataSource struct {
		QuoteSources    []string `yaml:"quote_sources"`
		CandleSources   []string `yaml:"candle_sources"`
		AlphaVantageURL string   `yaml:"alphavantage_url"`
		AlphaVantageKey string   `yaml:"alphavantage_key"`
		TableSource     string   `yaml:"table_source"`
		RelayPrefix     string   `yaml:"relay_prefix"`
		Retries         int      `yaml:"retries"`
		MockSeed        int64    `yaml:"mock_seed"`
	} `yaml:"data_source"`
	News struct {
		APIKey       string `yaml:"api_key"`
		BaseURL      string `yaml:"base_url"`
		ScrapeURL    string `yaml:"scrape_url"`
		ScrapeItem   string `yaml:"scrape_item"`
		ScrapeTitle  string `yaml:"scrape_title"`
		ScrapeSource string `yaml:"scrape_source"`
	} `yaml:"news"`
	Cache struct {
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STOCKS"); v != "" {
		c.Dashboard.Stocks = splitList(v)
	}
	if v := os.Getenv("CHART_SYMBOL"); v != "" {
		c.Dashboard.ChartSymbol = v
	}
	if v := os.Getenv("CHART_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Dashboard.ChartDays = n
		}
	}
	if v := os.Getenv("QUOTE_SOURCES"); v != "" {
		c.DataSource.QuoteSources = splitList(v)
	}
	if v := os.Getenv("CANDLE_SOURCES"); v != "" {
		c.DataSource.CandleSources = splitList(v)
	}
	if v := os.Getenv("ALPHAVANTAGE_BASE_URL"); v != "" {
		c.DataSource.AlphaVantageURL = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.DataSource.AlphaVantageKey = v
	}
	if v := os.Getenv("TABLE_SOURCE"); v != "" {
		c.DataSource.TableSource = v
	}
	if v := os.Getenv("RELAY_PREFIX"); v != "" {
		c.DataSource.RelayPrefix = v
	}
	if v := os.Getenv("NEWSAPI_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("NEWS_SCRAPE_URL"); v != "" {
		c.News.ScrapeURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
}

func (c *Config) applyDefaults() {
	if len(c.Dashboard.Stocks) == 0 {
		c.Dashboard.Stocks = append([]string(nil), DefaultStocks...)
	}
	for i, s := range c.Dashboard.Stocks {
		c.Dashboard.Stocks[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if c.Dashboard.ChartSymbol == "" {
		c.Dashboard.ChartSymbol = c.Dashboard.Stocks[0]
	}
	c.Dashboard.ChartSymbol = strings.ToUpper(c.Dashboard.ChartSymbol)
	if c.Dashboard.ChartDays == 0 {
		c.Dashboard.ChartDays = 30
	}
	if c.Dashboard.NewsLimit == 0 {
		c.Dashboard.NewsLimit = 5
	}
	if c.Dashboard.MostActive == 0 {
		c.Dashboard.MostActive = 6
	}
	if c.DataSource.QuoteSources == nil {
		c.DataSource.QuoteSources = []string{"alphavantage"}
	}
	if c.DataSource.CandleSources == nil {
		c.DataSource.CandleSources = []string{"yahoo", "alphavantage", "table"}
	}
	if c.DataSource.TableSource == "" {
		c.DataSource.TableSource = "sample"
	}
	if c.DataSource.Retries == 0 {
		c.DataSource.Retries = 2
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "@every 30s"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stockdash.db"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	for _, s := range c.Dashboard.Stocks {
		if s == "" {
			return fmt.Errorf("dashboard.stocks contains an empty symbol")
		}
	}
	if c.Dashboard.ChartDays < 0 {
		return fmt.Errorf("dashboard.chart_days must not be negative")
	}
	if c.Dashboard.NewsLimit < 0 || c.Dashboard.MostActive < 0 {
		return fmt.Errorf("dashboard.news_limit and dashboard.most_active must not be negative")
	}
	for _, s := range c.DataSource.QuoteSources {
		if !quoteSourceNames[s] {
			return fmt.Errorf("data_source.quote_sources: unknown source %q", s)
		}
	}
	for _, s := range c.DataSource.CandleSources {
		if !candleSourceNames[s] {
			return fmt.Errorf("data_source.candle_sources: unknown source %q", s)
		}
	}
	if c.DataSource.Retries < 1 {
		return fmt.Errorf("data_source.retries must be at least 1")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToLower(s))
		}
	}
	return out
}
