package model

import "time"

// OHLCRecord is one candlestick interval as produced by the table parser.
// JSON keys follow the chart layer's {x,o,h,l,c,v} shape.
type OHLCRecord struct {
	TimestampMillis int64   `json:"x"`
	Open            float64 `json:"o"`
	High            float64 `json:"h"`
	Low             float64 `json:"l"`
	Close           float64 `json:"c"`
	Volume          int64   `json:"v"`
	Transactions    int64   `json:"transactions"`
	Ticker          string  `json:"ticker"`
}

// Time returns the interval start as a time.Time.
func (r OHLCRecord) Time() time.Time {
	return time.UnixMilli(r.TimestampMillis)
}

// Quote is the latest price snapshot for one ticker.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Up reports whether the quote moved up (or stayed flat) on the session.
func (q Quote) Up() bool { return q.Change >= 0 }

// MarketStats aggregates the watchlist quotes.
type MarketStats struct {
	TotalVolume  int64   `json:"total_volume"`
	ActiveStocks int     `json:"active_stocks"`
	MarketCap    float64 `json:"market_cap"` // simplified: sum(price*volume/10)
}

// MarketStatus describes the regular trading session at a point in time.
type MarketStatus struct {
	Open    bool      `json:"open"`
	Label   string    `json:"label"`
	Session string    `json:"session"`
	Time    time.Time `json:"time"`
}

// ChartSummary holds the headline figures of the market-overview chart.
type ChartSummary struct {
	Ticker        string  `json:"ticker"`
	Source        string  `json:"source"`
	Count         int     `json:"count"`
	FirstOpen     float64 `json:"first_open"`
	LastClose     float64 `json:"last_close"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	SMA5          float64 `json:"sma5"`
	RSI14         float64 `json:"rsi14"`
}
