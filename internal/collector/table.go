package collector

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
	"github.com/Stormmysea/stock-website/internal/ohlc"
)

// SampleSource selects the embedded sample table.
const SampleSource = "sample"

// TableFetcher implements CandleFetcher by parsing a comma-separated
// aggregate table. Source is SampleSource, a file path, or an http(s) URL.
// A nil Client uses http.DefaultClient.
type TableFetcher struct {
	Source string
	Client *http.Client
	Parser ohlc.Parser
}

// NewTableFetcher creates a TableFetcher. An empty source selects the sample.
func NewTableFetcher(source string) *TableFetcher {
	if source == "" {
		source = SampleSource
	}
	return &TableFetcher{
		Source: source,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *TableFetcher) Name() string {
	if f.Source == SampleSource {
		return "sample"
	}
	return "table"
}

// FetchCandles parses the table and keeps the rows for symbol; an empty symbol
// keeps every row. The table is intraday, so days is ignored.
func (f *TableFetcher) FetchCandles(ctx context.Context, symbol string, _ int) ([]model.OHLCRecord, error) {
	text, err := f.read(ctx)
	if err != nil {
		return nil, err
	}

	records, rep := f.Parser.ParseReport(text)
	if !rep.HeaderMatches {
		log.Printf("[WARN] table %s: header %v does not match expected columns %v, parsing positionally",
			f.Source, rep.Header, ohlc.Columns)
	}
	if rep.Dropped > 0 || rep.DefaultedFields > 0 || rep.ClockFallbacks > 0 {
		log.Printf("[WARN] table %s: %d rows, %d dropped, %d fields defaulted, %d timestamps from clock",
			f.Source, rep.Rows, rep.Dropped, rep.DefaultedFields, rep.ClockFallbacks)
	}

	if symbol == "" {
		return records, nil
	}
	kept := records[:0]
	for _, r := range records {
		if strings.EqualFold(r.Ticker, symbol) {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("table %s: no rows for %s", f.Source, symbol)
	}
	return kept, nil
}

func (f *TableFetcher) read(ctx context.Context) (string, error) {
	switch {
	case f.Source == SampleSource:
		return ohlc.SampleCSV, nil
	case strings.HasPrefix(f.Source, "http://"), strings.HasPrefix(f.Source, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Source, nil)
		if err != nil {
			return "", err
		}
		client := f.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetch table: %w", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("read table: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetch table: status %d", resp.StatusCode)
		}
		return string(body), nil
	default:
		data, err := os.ReadFile(f.Source)
		if err != nil {
			return "", fmt.Errorf("read table: %w", err)
		}
		return string(data), nil
	}
}
