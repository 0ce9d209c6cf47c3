package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Fetch(context.Context) ([]model.NewsItem, error) {
	return nil, errors.New("unreachable")
}

func TestMockSource(t *testing.T) {
	m := &MockSource{Now: func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }}
	items, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 headlines, got %d", len(items))
	}
	if items[0].Title != "Tech Stocks Surge Amid AI Investment Boom" || items[0].Source != "Financial Times" {
		t.Errorf("unexpected first headline %+v", items[0])
	}
	for _, it := range items {
		if it.Date != "3/5/2024" {
			t.Errorf("expected date 3/5/2024, got %s", it.Date)
		}
	}
}

func TestFetch_Fallback(t *testing.T) {
	tests := []struct {
		name    string
		primary Source
		limit   int
		want    int
	}{
		{"nil primary", nil, 0, 5},
		{"failing primary", failingSource{}, 0, 5},
		{"limit applied", failingSource{}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fetch(context.Background(), tt.primary, tt.limit)
			if len(got) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(got))
			}
		})
	}
}

func TestNewsAPISource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "secret" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("q") != "stock market" {
			t.Errorf("unexpected query %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","articles":[
			{"source":{"name":"Reuters"},"title":"Stocks rally","url":"https://example.com/a","publishedAt":"2024-03-05T14:00:00Z"},
			{"source":{"name":"X"},"title":"[Removed]","url":"","publishedAt":"2024-03-05T14:00:00Z"}]}`))
	}))
	defer srv.Close()

	items := Fetch(context.Background(), NewNewsAPISource(srv.URL, "secret", ""), 0)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Source != "Reuters" || items[0].Date != "3/5/2024" {
		t.Errorf("unexpected item %+v", items[0])
	}
}

func TestNewsAPISource_ErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
	}))
	defer srv.Close()

	src := NewNewsAPISource(srv.URL, "bad", "")
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 401")
	}
	if items := Fetch(context.Background(), src, 0); len(items) != 5 {
		t.Errorf("expected mock fallback, got %d items", len(items))
	}
}

func TestNewsAPISource_NoKey(t *testing.T) {
	if _, err := NewNewsAPISource("", "", "").Fetch(context.Background()); err == nil {
		t.Error("expected error without api key")
	}
}

func TestScrapeSource(t *testing.T) {
	page := `<html><body>
		<article><h3><a href="/markets/1">  Dow   closes higher </a></h3><span class="src">AP</span></article>
		<article><h3><a href="https://other.example/2">Oil slips</a></h3></article>
		<article><h3><a href="/markets/1">Dow closes higher</a></h3></article>
		<article><p>no link here</p></article>
	</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	s := NewScrapeSource(srv.URL+"/news", "article", "h3 a")
	s.SourceSelector = ".src"
	items, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items after dedupe, got %d: %+v", len(items), items)
	}
	if items[0].Title != "Dow closes higher" || items[0].URL != srv.URL+"/markets/1" || items[0].Source != "AP" {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].URL != "https://other.example/2" {
		t.Errorf("expected absolute link kept, got %s", items[1].URL)
	}
	if items[2].Title != "no link here" || items[2].URL != "#" {
		t.Errorf("expected item text fallback, got %+v", items[2])
	}
}
