package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/Stormmysea/stock-website/internal/model"
)

// FinanceGoFetcher implements QuoteFetcher and CandleFetcher on top of the
// finance-go Yahoo client.
type FinanceGoFetcher struct{}

func NewFinanceGoFetcher() *FinanceGoFetcher { return &FinanceGoFetcher{} }

func (f *FinanceGoFetcher) Name() string { return "financego" }

// FetchQuote returns the regular-market quote for symbol.
func (f *FinanceGoFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("finance-go quote %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("finance-go quote %s: not found", symbol)
	}
	return &model.Quote{
		Symbol:        q.Symbol,
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		Volume:        int64(q.RegularMarketVolume),
		High:          q.RegularMarketDayHigh,
		Low:           q.RegularMarketDayLow,
		Source:        f.Name(),
		FetchedAt:     time.Now(),
	}, nil
}

// FetchCandles returns daily bars covering the last days days.
func (f *FinanceGoFetcher) FetchCandles(ctx context.Context, symbol string, days int) ([]model.OHLCRecord, error) {
	if days <= 0 {
		days = 30
	}
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []model.OHLCRecord
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := iter.Bar()
		o, _ := bar.Open.Float64()
		h, _ := bar.High.Float64()
		l, _ := bar.Low.Float64()
		c, _ := bar.Close.Float64()
		bars = append(bars, model.OHLCRecord{
			TimestampMillis: int64(bar.Timestamp) * 1000,
			Open:            o,
			High:            h,
			Low:             l,
			Close:           c,
			Volume:          int64(bar.Volume),
			Ticker:          symbol,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart %s: %w", symbol, err)
	}
	return bars, nil
}
