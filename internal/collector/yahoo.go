package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=%s"

// YahooFetcher implements CandleFetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client *http.Client
	// RelayPrefix, when set, is prepended to the query-escaped chart URL
	// (for example "https://api.allorigins.win/raw?url=").
	RelayPrefix string
	// BaseURL overrides the chart URL format; it must contain two %s verbs.
	BaseURL string
}

// NewYahooFetcher creates a Yahoo chart fetcher with optional proxy support.
func NewYahooFetcher(proxyURL, relayPrefix string) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		RelayPrefix: relayPrefix,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the v8 chart envelope. Price columns are nullable: Yahoo
// emits null for sessions without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []yahooColumns `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooColumns struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// cell reads column i, treating missing and null entries as zero.
func cell(col []*float64, i int) float64 {
	if i >= len(col) || col[i] == nil {
		return 0
	}
	return *col[i]
}

func (f *YahooFetcher) chartURL(symbol string, days int) string {
	base := f.BaseURL
	if base == "" {
		base = yahooChartURL
	}
	u := fmt.Sprintf(base, url.PathEscape(symbol), fmt.Sprintf("%dd", days))
	if f.RelayPrefix != "" {
		return f.RelayPrefix + url.QueryEscape(u)
	}
	return u
}

// FetchCandles returns daily bars for the last days days (30 when unset).
func (f *YahooFetcher) FetchCandles(ctx context.Context, symbol string, days int) ([]model.OHLCRecord, error) {
	if days <= 0 {
		days = 30
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.chartURL(symbol, days), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return decodeChart(body, symbol)
}

// decodeChart turns a chart payload into bars sorted by time. Bars without
// an open price are skipped.
func decodeChart(body []byte, symbol string) ([]model.OHLCRecord, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if e := chart.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo api error %s: %s", e.Code, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: no data returned", symbol)
	}

	result := chart.Chart.Result[0]
	cols := result.Indicators.Quote[0]
	var bars []model.OHLCRecord
	for i, ts := range result.Timestamp {
		open := cell(cols.Open, i)
		if open <= 0 {
			continue
		}
		bars = append(bars, model.OHLCRecord{
			TimestampMillis: ts * 1000,
			Open:            open,
			High:            cell(cols.High, i),
			Low:             cell(cols.Low, i),
			Close:           cell(cols.Close, i),
			Volume:          int64(cell(cols.Volume, i)),
			Ticker:          symbol,
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s: no bars with prices", symbol)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TimestampMillis < bars[j].TimestampMillis })
	return bars, nil
}
