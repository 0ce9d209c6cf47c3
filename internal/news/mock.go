package news

import (
	"context"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

var mockHeadlines = []struct{ title, source string }{
	{"Tech Stocks Surge Amid AI Investment Boom", "Financial Times"},
	{"Federal Reserve Holds Interest Rates Steady", "Wall Street Journal"},
	{"Electric Vehicle Market Sees Record Growth", "Bloomberg"},
	{"Cloud Computing Revenue Exceeds Expectations", "TechCrunch"},
	{"Global Markets React to Economic Indicators", "Reuters"},
}

// MockSource serves a fixed set of headlines dated today.
type MockSource struct {
	Now func() time.Time
}

func NewMockSource() *MockSource { return &MockSource{} }

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(_ context.Context) ([]model.NewsItem, error) {
	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}
	date := now.Format(DateLayout)
	items := make([]model.NewsItem, len(mockHeadlines))
	for i, h := range mockHeadlines {
		items[i] = model.NewsItem{Title: h.title, Source: h.source, Date: date, URL: "#"}
	}
	return items, nil
}
