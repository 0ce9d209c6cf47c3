package calculator

import (
	"fmt"

	"github.com/Stormmysea/stock-website/internal/model"
)

// SMA averages the trailing window of period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("sma: period %d must be positive", period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("sma: %d prices, need %d", len(prices), period)
	}
	return mean(prices[len(prices)-period:]), nil
}

func mean(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// Closes returns the close column of bars.
func Closes(bars []model.OHLCRecord) []float64 {
	out := make([]float64, 0, len(bars))
	for _, b := range bars {
		out = append(out, b.Close)
	}
	return out
}
