// Package news loads the market headline panel.
package news

import (
	"context"
	"log"

	"github.com/Stormmysea/stock-website/internal/model"
)

// DateLayout is the display format of NewsItem.Date.
const DateLayout = "1/2/2006"

// Source returns a list of recent market headlines.
type Source interface {
	Fetch(ctx context.Context) ([]model.NewsItem, error)
	Name() string
}

// Fetch returns at most limit headlines from primary. The fixed mock
// headlines are used whenever primary yields nothing usable.
// A non-positive limit keeps every headline.
func Fetch(ctx context.Context, primary Source, limit int) []model.NewsItem {
	var items []model.NewsItem
	if primary != nil {
		got, err := primary.Fetch(ctx)
		switch {
		case err != nil:
			log.Printf("[WARN] news source %s failed: %v, using mock headlines", primary.Name(), err)
		case len(got) == 0:
			log.Printf("[WARN] news source %s returned no headlines, using mock headlines", primary.Name())
		default:
			items = got
		}
	}
	if items == nil {
		items, _ = NewMockSource().Fetch(ctx)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
