package recorder

import (
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Snapshot holds everything produced by one dashboard refresh.
type Snapshot struct {
	Time    time.Time
	Quotes  []model.Quote
	Candles []model.OHLCRecord
	Chart   model.ChartSummary
	Stats   model.MarketStats
}

// Recorder persists refresh history for later analysis.
type Recorder interface {
	RecordRefresh(snap *Snapshot) error
	Close() error
}
