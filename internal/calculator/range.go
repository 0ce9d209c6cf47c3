package calculator

import (
	"errors"
	"math"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Range returns the highest high and lowest low across bars.
func Range(bars []model.OHLCRecord) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, errors.New("no bars provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low, nil
}
