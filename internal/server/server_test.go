package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Stormmysea/stock-website/internal/dashboard"
	"github.com/Stormmysea/stock-website/internal/model"
	"github.com/Stormmysea/stock-website/internal/ohlc"
	"github.com/Stormmysea/stock-website/internal/search"
	"github.com/Stormmysea/stock-website/internal/terminal"
)

func loadedState() *dashboard.State {
	return &dashboard.State{
		Quotes: []model.Quote{
			{Symbol: "AAPL", Price: 189.5, Change: 1, ChangePercent: 0.53, Volume: 100},
			{Symbol: "MSFT", Price: 410, Change: -2, ChangePercent: -0.49, Volume: 200},
		},
		Candles:   ohlc.Parse(ohlc.SampleCSV),
		Chart:     model.ChartSummary{Ticker: "AAPL", Source: "sample", Count: 12},
		News:      []model.NewsItem{{Title: "Markets steady", Source: "Reuters", Date: "3/5/2024", URL: "#"}},
		Status:    model.MarketStatus{Label: "MARKET CLOSED", Session: "Weekend"},
		UpdatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(t *testing.T, refresh func(ctx context.Context) error) (*httptest.Server, *dashboard.Holder) {
	t.Helper()
	idx, err := search.NewIndex(search.Listings([]string{"AAPL", "MSFT", "AMD"}))
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	holder := &dashboard.Holder{}
	console := terminal.NewConsole(idx, HolderQuotes(holder))
	srv := httptest.NewServer(New(":0", holder, console, idx, refresh).Handler())
	t.Cleanup(srv.Close)
	return srv, holder
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestNotLoaded(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, path := range []string{"/", "/api/state", "/api/quotes", "/api/quotes/AAPL", "/api/candles", "/api/news"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, resp.StatusCode)
		}
	}

	var health map[string]interface{}
	if code := getJSON(t, srv.URL+"/healthz", &health); code != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", code)
	}
	if health["loaded"] != false {
		t.Errorf("expected loaded=false, got %v", health["loaded"])
	}
}

func TestQuotes(t *testing.T) {
	srv, holder := newTestServer(t, nil)
	holder.Store(loadedState())

	var quotes []model.Quote
	if code := getJSON(t, srv.URL+"/api/quotes", &quotes); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(quotes) != 2 {
		t.Errorf("expected 2 quotes, got %d", len(quotes))
	}

	var q model.Quote
	if code := getJSON(t, srv.URL+"/api/quotes/msft", &q); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if q.Symbol != "MSFT" || q.Price != 410 {
		t.Errorf("unexpected quote %+v", q)
	}

	if code := getJSON(t, srv.URL+"/api/quotes/ZZZ", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown symbol, got %d", code)
	}
}

func TestCandles(t *testing.T) {
	srv, holder := newTestServer(t, nil)
	holder.Store(loadedState())

	var body struct {
		Ticker  string             `json:"ticker"`
		Candles []model.OHLCRecord `json:"candles"`
	}
	if code := getJSON(t, srv.URL+"/api/candles?limit=3", &body); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.Ticker != "AAPL" || len(body.Candles) != 3 {
		t.Errorf("expected 3 AAPL candles, got %s/%d", body.Ticker, len(body.Candles))
	}
	if body.Candles[2].Close != 200.88 {
		t.Errorf("expected last candle close 200.88, got %.2f", body.Candles[2].Close)
	}

	if code := getJSON(t, srv.URL+"/api/candles?limit=x", nil); code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", code)
	}
}

func TestSearch(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var body struct {
		Results []search.Listing `json:"results"`
	}
	getJSON(t, srv.URL+"/api/search?q=am", &body)
	if len(body.Results) != 1 || body.Results[0].Symbol != "AMD" {
		t.Errorf("unexpected results %+v", body.Results)
	}
}

func TestTerminalCommand(t *testing.T) {
	srv, holder := newTestServer(t, nil)
	holder.Store(loadedState())

	resp, err := http.Post(srv.URL+"/api/terminal", "application/json", strings.NewReader(`{"command":"search aapl"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var res terminal.Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Lines) != 2 || res.Lines[1].Text != "AAPL: $189.50 (+0.53%)" {
		t.Errorf("unexpected lines %+v", res.Lines)
	}
	if len(res.Matches) != 1 || res.Matches[0] != "AAPL" {
		t.Errorf("unexpected matches %v", res.Matches)
	}

	var hist struct {
		Lines []terminal.Line `json:"lines"`
	}
	getJSON(t, srv.URL+"/api/terminal", &hist)
	if len(hist.Lines) != 2 {
		t.Errorf("expected 2 history lines, got %d", len(hist.Lines))
	}
}

func TestTerminalCommand_BadBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Post(srv.URL+"/api/terminal", "application/json", strings.NewReader(`{`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRefresh(t *testing.T) {
	var holder *dashboard.Holder
	calls := 0
	srv, holder := newTestServer(t, func(ctx context.Context) error {
		calls++
		holder.Store(loadedState())
		return nil
	})

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || calls != 1 {
		t.Errorf("expected 200 after one refresh, got %d (%d calls)", resp.StatusCode, calls)
	}
}

func TestRefresh_Error(t *testing.T) {
	srv, _ := newTestServer(t, func(ctx context.Context) error { return errors.New("boom") })
	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestPage(t *testing.T) {
	srv, holder := newTestServer(t, nil)
	holder.Store(loadedState())

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %s", ct)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := doc.Find(".stock-card").Length(); n != 2 {
		t.Errorf("expected 2 cards, got %d", n)
	}

	if code := getJSON(t, srv.URL+"/nope", nil); code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", code)
	}
}
