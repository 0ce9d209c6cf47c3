package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/Stormmysea/stock-website/internal/model"
)

const alphaVantageURL = "https://www.alphavantage.co"

// AlphaVantageFetcher implements QuoteFetcher and CandleFetcher using the
// Alpha Vantage query API.
type AlphaVantageFetcher struct {
	client *resty.Client
	apiKey string
}

// NewAlphaVantageFetcher creates a fetcher. An empty baseURL uses the public
// endpoint; an empty apiKey uses the "demo" key.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = alphaVantageURL
	}
	if apiKey == "" {
		apiKey = "demo"
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &AlphaVantageFetcher{client: client, apiKey: apiKey}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type avDaily struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (f *AlphaVantageFetcher) query(ctx context.Context, params map[string]string, out interface{}) error {
	params["apikey"] = f.apiKey
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/query")
	if err != nil {
		return fmt.Errorf("alphavantage %s: %w", params["function"], err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("alphavantage %s: status %d: %s", params["function"], resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("alphavantage %s decode: %w", params["function"], err)
	}
	return nil
}

// FetchQuote returns the GLOBAL_QUOTE for symbol. A response without a quote
// object (unknown symbol, rate limit note) is an error.
func (f *AlphaVantageFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	var result struct {
		Quote map[string]string `json:"Global Quote"`
		Note  string            `json:"Note"`
		Info  string            `json:"Information"`
	}
	if err := f.query(ctx, map[string]string{"function": "GLOBAL_QUOTE", "symbol": symbol}, &result); err != nil {
		return nil, err
	}
	if len(result.Quote) == 0 {
		msg := strings.TrimSpace(result.Note + " " + result.Info)
		if msg == "" {
			msg = "empty quote"
		}
		return nil, fmt.Errorf("alphavantage GLOBAL_QUOTE %s: %s", symbol, msg)
	}

	q := result.Quote
	sym := q["01. symbol"]
	if sym == "" {
		sym = symbol
	}
	return &model.Quote{
		Symbol:        sym,
		Price:         floatField(q["05. price"]),
		Change:        floatField(q["09. change"]),
		ChangePercent: floatField(strings.TrimSuffix(q["10. change percent"], "%")),
		Volume:        decimalField(q["06. volume"]).IntPart(),
		High:          floatField(q["03. high"]),
		Low:           floatField(q["04. low"]),
		Source:        f.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

// FetchCandles returns the last days entries of TIME_SERIES_DAILY.
func (f *AlphaVantageFetcher) FetchCandles(ctx context.Context, symbol string, days int) ([]model.OHLCRecord, error) {
	var result struct {
		Series map[string]avDaily `json:"Time Series (Daily)"`
	}
	params := map[string]string{"function": "TIME_SERIES_DAILY", "symbol": symbol, "outputsize": "compact"}
	if err := f.query(ctx, params, &result); err != nil {
		return nil, err
	}
	if len(result.Series) == 0 {
		return nil, fmt.Errorf("alphavantage TIME_SERIES_DAILY %s: no data", symbol)
	}

	dates := make([]string, 0, len(result.Series))
	for d := range result.Series {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if days > 0 && len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	bars := make([]model.OHLCRecord, 0, len(dates))
	for _, d := range dates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		v := result.Series[d]
		bars = append(bars, model.OHLCRecord{
			TimestampMillis: day.UnixMilli(),
			Open:            floatField(v.Open),
			High:            floatField(v.High),
			Low:             floatField(v.Low),
			Close:           floatField(v.Close),
			Volume:          decimalField(v.Volume).IntPart(),
			Ticker:          symbol,
		})
	}
	return bars, nil
}

// decimalField parses an API numeric string; malformed values become zero.
func decimalField(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func floatField(s string) float64 {
	f, _ := decimalField(s).Float64()
	return f
}
