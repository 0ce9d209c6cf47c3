package collector

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Collector walks an ordered chain of fetchers and falls back to the mock
// generator when every real source fails. A nil Mock is replaced by an
// unseeded generator on first use.
type Collector struct {
	QuoteFetchers  []QuoteFetcher
	CandleFetchers []CandleFetcher
	Mock           *MockFetcher
	Cache          QuoteCache
	Retries        int

	mockOnce sync.Once
}

// CacheSource is the Quote.Source of a quote served from the cache.
const CacheSource = "cache"

// NewCollector creates a Collector with a seeded mock fallback and no cache.
func NewCollector(quotes []QuoteFetcher, candles []CandleFetcher) *Collector {
	return &Collector{
		QuoteFetchers:  quotes,
		CandleFetchers: candles,
		Mock:           NewMockFetcher(0),
		Cache:          NewNoopCache(),
		Retries:        1,
	}
}

// Quotes fetches one quote per symbol concurrently. The result keeps the
// order of symbols and always has one entry per symbol.
func (c *Collector) Quotes(ctx context.Context, symbols []string) []model.Quote {
	out := make([]model.Quote, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = c.quote(ctx, strings.ToUpper(strings.TrimSpace(sym)))
		}(i, sym)
	}
	wg.Wait()
	return out
}

func (c *Collector) quote(ctx context.Context, symbol string) model.Quote {
	if c.Cache != nil {
		q, err := c.Cache.GetQuote(ctx, symbol)
		if err != nil {
			log.Printf("[WARN] quote cache read %s: %v", symbol, err)
		} else if q != nil {
			hit := *q
			hit.Source = CacheSource
			return hit
		}
	}

	for _, f := range c.QuoteFetchers {
		var q *model.Quote
		err := withRetry(ctx, c.Retries, f.Name()+" quote "+symbol, func() error {
			var err error
			q, err = f.FetchQuote(ctx, symbol)
			return err
		})
		if err != nil {
			log.Printf("[WARN] %s quote %s failed: %v", f.Name(), symbol, err)
			continue
		}
		if c.Cache != nil {
			if err := c.Cache.SetQuote(ctx, q); err != nil {
				log.Printf("[WARN] quote cache write %s: %v", symbol, err)
			}
		}
		return *q
	}

	if len(c.QuoteFetchers) > 0 {
		log.Printf("[WARN] all quote sources failed for %s, using mock data", symbol)
	}
	q, _ := c.mock().FetchQuote(ctx, symbol)
	return *q
}

// Candles returns the candle series for symbol and the name of the source
// that produced it.
func (c *Collector) Candles(ctx context.Context, symbol string, days int) ([]model.OHLCRecord, string) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, f := range c.CandleFetchers {
		var bars []model.OHLCRecord
		err := withRetry(ctx, c.Retries, f.Name()+" candles "+symbol, func() error {
			var err error
			bars, err = f.FetchCandles(ctx, symbol, days)
			return err
		})
		if err != nil {
			log.Printf("[WARN] %s candles %s failed: %v", f.Name(), symbol, err)
			continue
		}
		if len(bars) == 0 {
			log.Printf("[WARN] %s candles %s: empty series", f.Name(), symbol)
			continue
		}
		return bars, f.Name()
	}

	if len(c.CandleFetchers) > 0 {
		log.Printf("[WARN] all candle sources failed for %s, using mock data", symbol)
	}
	m := c.mock()
	bars, _ := m.FetchCandles(ctx, symbol, days)
	return bars, m.Name()
}

func (c *Collector) mock() *MockFetcher {
	c.mockOnce.Do(func() {
		if c.Mock == nil {
			c.Mock = NewMockFetcher(0)
		}
	})
	return c.Mock
}
