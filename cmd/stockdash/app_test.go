package main

import (
	"strings"
	"testing"

	"github.com/Stormmysea/stock-website/internal/config"
	"github.com/Stormmysea/stock-website/internal/ohlc"
)

func TestSourceChains(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.QuoteSources = []string{"financego", "alphavantage"}
	cfg.DataSource.CandleSources = []string{"table", "yahoo", "alphavantage"}
	cfg.DataSource.TableSource = "sample"

	var quotes []string
	for _, f := range quoteFetchers(cfg) {
		quotes = append(quotes, f.Name())
	}
	if got := strings.Join(quotes, ","); got != "financego,alphavantage" {
		t.Errorf("quote chain = %s", got)
	}

	var candles []string
	for _, f := range candleFetchers(cfg) {
		candles = append(candles, f.Name())
	}
	if got := strings.Join(candles, ","); got != "sample,yahoo,alphavantage" {
		t.Errorf("candle chain = %s", got)
	}
}

func TestNewsSource(t *testing.T) {
	cfg := &config.Config{}
	if src := newsSource(cfg); src != nil {
		t.Errorf("expected nil source, got %s", src.Name())
	}

	cfg.News.ScrapeURL = "https://example.com/markets"
	if src := newsSource(cfg); src == nil || src.Name() != "scrape" {
		t.Errorf("expected scrape source, got %v", src)
	}

	cfg.News.APIKey = "key"
	if src := newsSource(cfg); src == nil || src.Name() != "newsapi" {
		t.Errorf("expected newsapi source, got %v", src)
	}
}

func TestReadTable(t *testing.T) {
	text, err := readTable(nil, nil)
	if err != nil {
		t.Fatalf("readTable: %v", err)
	}
	if text != ohlc.SampleCSV {
		t.Error("expected the sample table without arguments")
	}

	in := strings.NewReader("ticker,volume,open,close,high,low,window_start\nAAPL,1,1,1,1,1,0\n")
	text, err = readTable(in, []string{"-"})
	if err != nil {
		t.Fatalf("readTable stdin: %v", err)
	}
	if len(ohlc.Parse(text)) != 1 {
		t.Errorf("expected 1 record from stdin, got %q", text)
	}

	if _, err := readTable(nil, []string{"/does/not/exist.csv"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Dashboard.Stocks = []string{"AAPL", "MSFT"}
	cfg.Dashboard.ChartSymbol = "AAPL"
	cfg.DataSource.Retries = 1

	a, err := newApp(cfg, false)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	if got := a.index.Symbols(); len(got) != 2 {
		t.Errorf("index symbols = %v", got)
	}
	if a.holder.Load() != nil {
		t.Error("expected no state before the first refresh")
	}
}
