package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/Stormmysea/stock-website/internal/collector"
	"github.com/Stormmysea/stock-website/internal/config"
	"github.com/Stormmysea/stock-website/internal/dashboard"
	"github.com/Stormmysea/stock-website/internal/news"
	"github.com/Stormmysea/stock-website/internal/recorder"
	"github.com/Stormmysea/stock-website/internal/search"
	"github.com/Stormmysea/stock-website/internal/server"
	"github.com/Stormmysea/stock-website/internal/terminal"
)

// app bundles the wired components shared by the subcommands.
type app struct {
	cfg      *config.Config
	holder   *dashboard.Holder
	service  *dashboard.Service
	index    *search.Index
	console  *terminal.Console
	cache    collector.QuoteCache
	recorder recorder.Recorder
}

// newApp wires the dashboard from cfg. History is only persisted when
// record is set.
func newApp(cfg *config.Config, record bool) (*app, error) {
	a := &app{cfg: cfg, holder: &dashboard.Holder{}}

	index, err := search.NewIndex(search.Listings(cfg.Dashboard.Stocks))
	if err != nil {
		return nil, err
	}
	a.index = index
	a.console = terminal.NewConsole(index, server.HolderQuotes(a.holder))

	a.cache = newCache(cfg)
	if record {
		a.recorder = newRecorder(cfg.Database.SQLitePath)
	} else {
		a.recorder = recorder.NewNoopRecorder()
	}

	col := collector.NewCollector(quoteFetchers(cfg), candleFetchers(cfg))
	col.Mock = collector.NewMockFetcher(cfg.DataSource.MockSeed)
	col.Cache = a.cache
	col.Retries = cfg.DataSource.Retries

	a.service = &dashboard.Service{
		Collector:      col,
		News:           newsSource(cfg),
		Recorder:       a.recorder,
		Holder:         a.holder,
		Symbols:        cfg.Dashboard.Stocks,
		ChartSymbol:    cfg.Dashboard.ChartSymbol,
		ChartDays:      cfg.Dashboard.ChartDays,
		NewsLimit:      cfg.Dashboard.NewsLimit,
		MostActiveSize: cfg.Dashboard.MostActive,
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.recorder.Close(); err != nil {
		log.Printf("[WARN] close recorder: %v", err)
	}
	if err := a.cache.Close(); err != nil {
		log.Printf("[WARN] close cache: %v", err)
	}
	if err := a.index.Close(); err != nil {
		log.Printf("[WARN] close search index: %v", err)
	}
}

func quoteFetchers(cfg *config.Config) []collector.QuoteFetcher {
	ds := cfg.DataSource
	var out []collector.QuoteFetcher
	for _, name := range ds.QuoteSources {
		switch name {
		case "alphavantage":
			out = append(out, collector.NewAlphaVantageFetcher(ds.AlphaVantageURL, ds.AlphaVantageKey, cfg.Proxy))
		case "financego":
			out = append(out, collector.NewFinanceGoFetcher())
		}
	}
	return out
}

func candleFetchers(cfg *config.Config) []collector.CandleFetcher {
	ds := cfg.DataSource
	var out []collector.CandleFetcher
	for _, name := range ds.CandleSources {
		switch name {
		case "table":
			out = append(out, collector.NewTableFetcher(ds.TableSource))
		case "yahoo":
			out = append(out, collector.NewYahooFetcher(cfg.Proxy, ds.RelayPrefix))
		case "alphavantage":
			out = append(out, collector.NewAlphaVantageFetcher(ds.AlphaVantageURL, ds.AlphaVantageKey, cfg.Proxy))
		case "financego":
			out = append(out, collector.NewFinanceGoFetcher())
		}
	}
	return out
}

func newsSource(cfg *config.Config) news.Source {
	n := cfg.News
	switch {
	case n.APIKey != "":
		return news.NewNewsAPISource(n.BaseURL, n.APIKey, cfg.Proxy)
	case n.ScrapeURL != "":
		s := news.NewScrapeSource(n.ScrapeURL, n.ScrapeItem, n.ScrapeTitle)
		s.SourceSelector = n.ScrapeSource
		return s
	default:
		return nil
	}
}

func newCache(cfg *config.Config) collector.QuoteCache {
	c := cfg.Cache
	if c.RedisAddr == "" {
		return collector.NewNoopCache()
	}
	rc, err := collector.NewRedisCache(c.RedisAddr, c.RedisPassword, c.RedisDB, c.TTL)
	if err != nil {
		log.Printf("[WARN] init redis cache failed, quotes are not cached: %v", err)
		return collector.NewNoopCache()
	}
	log.Printf("[INFO] redis quote cache: %s (ttl %v)", c.RedisAddr, c.TTL)
	return rc
}

func newRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("[WARN] create sqlite dir failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}
