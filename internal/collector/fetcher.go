package collector

import (
	"context"

	"github.com/Stormmysea/stock-website/internal/model"
)

// QuoteFetcher returns the latest quote for a ticker.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}

// CandleFetcher returns a candle series for a ticker, oldest first.
type CandleFetcher interface {
	FetchCandles(ctx context.Context, symbol string, days int) ([]model.OHLCRecord, error)
	Name() string
}
