package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Stormmysea/stock-website/internal/calculator"
	"github.com/Stormmysea/stock-website/internal/collector"
	"github.com/Stormmysea/stock-website/internal/model"
	"github.com/Stormmysea/stock-website/internal/news"
	"github.com/Stormmysea/stock-website/internal/recorder"
)

// Service assembles a State from the collector and news source.
type Service struct {
	Collector *collector.Collector
	News      news.Source
	Recorder  recorder.Recorder
	Holder    *Holder

	Symbols        []string
	ChartSymbol    string
	ChartDays      int
	NewsLimit      int
	MostActiveSize int

	Now func() time.Time
}

// Refresh builds a new State, publishes it to the Holder and records it.
// Fetch failures degrade to mock data; only context cancellation is an error.
func (s *Service) Refresh(ctx context.Context) (*State, error) {
	start := s.now()

	var (
		wg       sync.WaitGroup
		quotes   []model.Quote
		candles  []model.OHLCRecord
		source   string
		headline []model.NewsItem
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		quotes = s.Collector.Quotes(ctx, s.Symbols)
	}()
	go func() {
		defer wg.Done()
		candles, source = s.Collector.Candles(ctx, s.ChartSymbol, s.ChartDays)
	}()
	go func() {
		defer wg.Done()
		headline = news.Fetch(ctx, s.News, s.NewsLimit)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mostActive := s.MostActiveSize
	if mostActive <= 0 {
		mostActive = 6
	}
	state := &State{
		Quotes:     quotes,
		Candles:    candles,
		Chart:      calculator.Summarize(candles, source),
		News:       headline,
		Stats:      calculator.Stats(quotes),
		MostActive: calculator.MostActive(quotes, mostActive),
		Status:     MarketStatusAt(start),
		UpdatedAt:  start,
	}
	if state.Chart.Ticker == "" {
		state.Chart.Ticker = s.ChartSymbol
	}

	if s.Holder != nil {
		s.Holder.Store(state)
	}
	if s.Recorder != nil {
		if err := s.Recorder.RecordRefresh(&recorder.Snapshot{
			Time:    start,
			Quotes:  quotes,
			Candles: candles,
			Chart:   state.Chart,
			Stats:   state.Stats,
		}); err != nil {
			log.Printf("[ERROR] record refresh: %v", err)
		}
	}

	log.Printf("[INFO] refresh done in %v: %d quotes, %d %s candles from %s, %d headlines",
		time.Since(start).Round(time.Millisecond), len(quotes), len(candles), state.Chart.Ticker, source, len(headline))
	return state, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
