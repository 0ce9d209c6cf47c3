package calculator

import (
	"fmt"

	"github.com/Stormmysea/stock-website/internal/model"
)

// neutralRSI is reported for series too short to measure.
const neutralRSI = 50.0

// RSI is the Wilder-smoothed relative strength index of the bar closes.
// Series with fewer than period+1 bars report neutralRSI.
func RSI(bars []model.OHLCRecord, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("rsi: period %d must be positive", period)
	}
	if len(bars) <= period {
		return neutralRSI, nil
	}

	gains, losses := moves(Closes(bars))
	up := mean(gains[:period])
	down := mean(losses[:period])
	n := float64(period)
	for i := period; i < len(gains); i++ {
		up = (up*(n-1) + gains[i]) / n
		down = (down*(n-1) + losses[i]) / n
	}

	if down == 0 {
		return 100, nil
	}
	return 100 - 100/(1+up/down), nil
}

// moves splits consecutive close differences into gains and losses, both
// non-negative.
func moves(closes []float64) (gains, losses []float64) {
	gains = make([]float64, len(closes)-1)
	losses = make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if d := closes[i] - closes[i-1]; d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	return gains, losses
}
