package collector

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Stormmysea/stock-website/internal/model"
)

// MockFetcher produces synthetic quotes and candles. It is the last fallback
// of every chain and never fails.
type MockFetcher struct {
	// BasePrices pins the candle walk start for known symbols; 150 otherwise.
	BasePrices map[string]float64
	Now        func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockFetcher creates a MockFetcher. A zero seed uses the current time.
func NewMockFetcher(seed int64) *MockFetcher {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockFetcher{
		BasePrices: map[string]float64{},
		rnd:        rand.New(rand.NewSource(seed)),
	}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *MockFetcher) float() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m.rnd.Float64()
}

// FetchQuote returns a random quote priced between 50 and 250.
func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	base := m.float()*200 + 50
	change := (m.float() - 0.5) * 10
	return &model.Quote{
		Symbol:        symbol,
		Price:         cents(base),
		Change:        cents(change),
		ChangePercent: cents(change / base * 100),
		Volume:        int64(m.float() * 10_000_000),
		High:          cents(base + m.float()*5),
		Low:           cents(base - m.float()*5),
		Source:        m.Name(),
		FetchedAt:     m.now(),
	}, nil
}

// FetchCandles returns one daily candle per day ending today, following a
// random walk with a slow sine trend.
func (m *MockFetcher) FetchCandles(_ context.Context, symbol string, days int) ([]model.OHLCRecord, error) {
	if days <= 0 {
		days = 30
	}
	price := 150.0
	if p, ok := m.BasePrices[symbol]; ok && p > 0 {
		price = p
	}

	today := m.now()
	bars := make([]model.OHLCRecord, 0, days)
	for i := days - 1; i >= 0; i-- {
		volatility := (m.float() - 0.5) * 0.04
		trend := math.Sin(float64(i)/5) * 0.01
		open := price
		closePrice := open * (1 + volatility + trend)
		high := math.Max(open, closePrice) * (1 + m.float()*0.02)
		low := math.Min(open, closePrice) * (1 - m.float()*0.02)
		bars = append(bars, model.OHLCRecord{
			TimestampMillis: today.AddDate(0, 0, -i).UnixMilli(),
			Open:            cents(open),
			High:            cents(high),
			Low:             cents(low),
			Close:           cents(closePrice),
			Volume:          int64(m.float()*5_000_000 + 1_000_000),
			Ticker:          symbol,
		})
		price = closePrice
	}
	return bars, nil
}

// cents rounds to two decimal places the way the display formats prices.
func cents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
