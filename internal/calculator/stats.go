package calculator

import (
	"log"
	"sort"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Stats aggregates volume and a simplified market cap over the quotes.
func Stats(quotes []model.Quote) model.MarketStats {
	st := model.MarketStats{ActiveStocks: len(quotes)}
	for _, q := range quotes {
		st.TotalVolume += q.Volume
		st.MarketCap += q.Price * float64(q.Volume) / 10
	}
	return st
}

// MostActive returns up to n quotes ordered by volume, highest first.
// Ties keep symbol order so the panel does not flicker between refreshes.
func MostActive(quotes []model.Quote, n int) []model.Quote {
	sorted := make([]model.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Volume != sorted[j].Volume {
			return sorted[i].Volume > sorted[j].Volume
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Summarize computes the chart headline figures for a candle series.
func Summarize(bars []model.OHLCRecord, source string) model.ChartSummary {
	sum := model.ChartSummary{Source: source, Count: len(bars), RSI14: 50}
	if len(bars) == 0 {
		return sum
	}
	first, last := bars[0], bars[len(bars)-1]
	sum.Ticker = last.Ticker
	sum.FirstOpen = first.Open
	sum.LastClose = last.Close
	sum.Change = last.Close - first.Open
	if first.Open != 0 {
		sum.ChangePercent = sum.Change / first.Open * 100
	}

	if h, l, err := Range(bars); err == nil {
		sum.High, sum.Low = h, l
	}

	if sma, err := SMA(Closes(bars), 5); err != nil {
		log.Printf("[WARN] SMA5 calculation failed: %v, using last close", err)
		sum.SMA5 = last.Close
	} else {
		sum.SMA5 = sma
	}

	if rsi, err := RSI(bars, 14); err != nil {
		log.Printf("[WARN] RSI14 calculation failed: %v, defaulting to 50", err)
	} else {
		sum.RSI14 = rsi
	}
	return sum
}
