// Package dashboard builds and publishes the dashboard state.
package dashboard

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

// State is one complete dashboard snapshot. It is built fresh by every
// refresh and never mutated after publication.
type State struct {
	Quotes     []model.Quote      `json:"quotes"`
	Candles    []model.OHLCRecord `json:"candles"`
	Chart      model.ChartSummary `json:"chart"`
	News       []model.NewsItem   `json:"news"`
	Stats      model.MarketStats  `json:"stats"`
	MostActive []model.Quote      `json:"most_active"`
	Status     model.MarketStatus `json:"status"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Quote returns the quote for symbol (case-insensitive).
func (s *State) Quote(symbol string) (model.Quote, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, q := range s.Quotes {
		if q.Symbol == symbol {
			return q, true
		}
	}
	return model.Quote{}, false
}

// Holder publishes the current State. Readers always see a complete State.
type Holder struct {
	current atomic.Pointer[State]
}

// Load returns the published State, or nil before the first refresh.
func (h *Holder) Load() *State {
	return h.current.Load()
}

// Store replaces the published State.
func (h *Holder) Store(s *State) {
	h.current.Store(s)
}
