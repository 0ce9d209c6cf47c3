package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Stormmysea/stock-website/internal/collector"
	"github.com/Stormmysea/stock-website/internal/recorder"
)

func TestMarketStatusAt(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	tests := []struct {
		name    string
		at      time.Time
		open    bool
		session string
	}{
		{"before open", time.Date(2024, 3, 5, 9, 29, 59, 0, ny), false, "After Hours / Pre-Market"},
		{"at open", time.Date(2024, 3, 5, 9, 30, 0, 0, ny), true, "Regular Trading Hours"},
		{"midday", time.Date(2024, 3, 5, 12, 0, 0, 0, ny), true, "Regular Trading Hours"},
		{"last minute", time.Date(2024, 3, 5, 15, 59, 59, 0, ny), true, "Regular Trading Hours"},
		{"at close", time.Date(2024, 3, 5, 16, 0, 0, 0, ny), false, "After Hours / Pre-Market"},
		{"saturday", time.Date(2024, 3, 9, 12, 0, 0, 0, ny), false, "Weekend"},
		{"utc input", time.Date(2024, 7, 1, 14, 0, 0, 0, time.UTC), true, "Regular Trading Hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := MarketStatusAt(tt.at)
			if st.Open != tt.open {
				t.Errorf("expected open=%v, got %v", tt.open, st.Open)
			}
			if st.Session != tt.session {
				t.Errorf("expected session %q, got %q", tt.session, st.Session)
			}
		})
	}
}

type countingRecorder struct {
	snaps []*recorder.Snapshot
	err   error
}

func (c *countingRecorder) RecordRefresh(s *recorder.Snapshot) error {
	c.snaps = append(c.snaps, s)
	return c.err
}

func (c *countingRecorder) Close() error { return nil }

func newService(rec recorder.Recorder) *Service {
	coll := collector.NewCollector(nil, []collector.CandleFetcher{collector.NewTableFetcher("")})
	coll.Mock = collector.NewMockFetcher(3)
	return &Service{
		Collector:   coll,
		Recorder:    rec,
		Holder:      &Holder{},
		Symbols:     []string{"AAPL", "MSFT", "TSLA", "AMD", "IBM", "INTC", "ORCL"},
		ChartSymbol: "AAPL",
		ChartDays:   30,
		NewsLimit:   3,
		Now:         func() time.Time { return time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC) },
	}
}

func TestRefresh(t *testing.T) {
	rec := &countingRecorder{}
	svc := newService(rec)

	if svc.Holder.Load() != nil {
		t.Fatal("expected no state before refresh")
	}
	st, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if svc.Holder.Load() != st {
		t.Error("expected refreshed state published")
	}
	if len(st.Quotes) != 7 || st.Quotes[0].Symbol != "AAPL" {
		t.Errorf("expected quotes in watchlist order, got %d", len(st.Quotes))
	}
	if st.Chart.Source != "sample" || st.Chart.Count != 12 || st.Chart.Ticker != "AAPL" {
		t.Errorf("unexpected chart summary %+v", st.Chart)
	}
	if len(st.News) != 3 {
		t.Errorf("expected 3 headlines, got %d", len(st.News))
	}
	if len(st.MostActive) != 6 {
		t.Errorf("expected 6 most active, got %d", len(st.MostActive))
	}
	if st.Stats.ActiveStocks != 7 {
		t.Errorf("expected 7 active stocks, got %d", st.Stats.ActiveStocks)
	}
	if !st.Status.Open {
		t.Error("expected market open at 12:00 New York time")
	}
	if len(rec.snaps) != 1 || len(rec.snaps[0].Candles) != 12 {
		t.Errorf("expected one recorded snapshot with 12 candles")
	}
}

func TestRefresh_ReplacesState(t *testing.T) {
	svc := newService(nil)
	first, _ := svc.Refresh(context.Background())
	second, _ := svc.Refresh(context.Background())
	if first == second {
		t.Fatal("expected a new state per refresh")
	}
	if svc.Holder.Load() != second {
		t.Error("expected latest state published")
	}
	if len(first.Quotes) != 7 {
		t.Error("expected earlier state left intact")
	}
}

func TestRefresh_RecorderErrorIgnored(t *testing.T) {
	svc := newService(&countingRecorder{err: errors.New("disk full")})
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Errorf("expected recorder error swallowed, got %v", err)
	}
}

func TestRefresh_Cancelled(t *testing.T) {
	svc := newService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Refresh(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if svc.Holder.Load() != nil {
		t.Error("expected nothing published on cancellation")
	}
}

func TestStateQuote(t *testing.T) {
	svc := newService(nil)
	st, _ := svc.Refresh(context.Background())
	q, ok := st.Quote("msft")
	if !ok || q.Symbol != "MSFT" {
		t.Errorf("expected MSFT quote, got %+v %v", q, ok)
	}
	if _, ok := st.Quote("ZZZ"); ok {
		t.Error("expected unknown symbol missing")
	}
}
