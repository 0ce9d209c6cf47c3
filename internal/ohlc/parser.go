// Package ohlc converts comma-separated aggregate tables into candlestick records.
//
// The table layout is positional and fixed by the upstream feed:
//
//	ticker,volume,open,close,high,low,window_start,transactions
//
// Note that close precedes high and low. The header line is read but never
// used to locate columns; a table with a different column order is misparsed
// rather than rejected. Report.HeaderMatches makes that case visible.
package ohlc

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Stormmysea/stock-website/internal/model"
)

// Columns is the column layout every data row is read against.
var Columns = []string{"ticker", "volume", "open", "close", "high", "low", "window_start", "transactions"}

// Field positions within a row.
const (
	colTicker = iota
	colVolume
	colOpen
	colClose
	colHigh
	colLow
	colWindowStart
	colTransactions
)

// minFields is the number of fields a row needs to be kept; transactions is optional.
const minFields = colWindowStart + 1

const (
	// window_start strings longer than this are nanoseconds.
	msDigits = 13
	// integers below this are seconds rather than milliseconds.
	msThreshold = 1_000_000_000_000
	nsPerMs     = 1_000_000
)

// Report describes what a parse did to its input. It never changes the output.
type Report struct {
	Header          []string // trimmed column names from line 1
	HeaderMatches   bool     // Header equals Columns (or its 7-column prefix), case-insensitive
	Rows            int      // data lines after the header
	Parsed          int      // records emitted
	Dropped         int      // lines with fewer than 7 fields
	DefaultedFields int      // numeric fields coerced to 0
	ClockFallbacks  int      // window_start values replaced by the wall clock
}

// Parser parses aggregate tables. The zero value is ready to use.
type Parser struct {
	// Now supplies the wall clock for rows without a usable window_start.
	// Defaults to time.Now.
	Now func() time.Time
}

// Parse runs the default Parser.
func Parse(text string) []model.OHLCRecord {
	var p Parser
	return p.Parse(text)
}

// ParseReport runs the default Parser and returns its diagnostics as well.
func ParseReport(text string) ([]model.OHLCRecord, Report) {
	var p Parser
	return p.ParseReport(text)
}

// Parse returns the records of text sorted ascending by timestamp.
// Malformed rows are skipped and unparsable numbers become zero.
func (p *Parser) Parse(text string) []model.OHLCRecord {
	records, _ := p.ParseReport(text)
	return records
}

// ParseReport is Parse plus a count of everything that was dropped or defaulted.
func (p *Parser) ParseReport(text string) ([]model.OHLCRecord, Report) {
	var rep Report
	records := make([]model.OHLCRecord, 0)

	text = strings.TrimSpace(text)
	if text == "" {
		return records, rep
	}

	lines := strings.Split(text, "\n")
	rep.Header = splitFields(lines[0])
	rep.HeaderMatches = headerMatches(rep.Header)

	now := p.now()
	for _, line := range lines[1:] {
		rep.Rows++
		fields := splitFields(line)
		if len(fields) < minFields {
			rep.Dropped++
			continue
		}

		rec := model.OHLCRecord{Ticker: fields[colTicker]}
		var ok bool
		if rec.Volume, ok = parseInt(fields[colVolume]); !ok {
			rep.DefaultedFields++
		}
		if rec.Open, ok = parseFloat(fields[colOpen]); !ok {
			rep.DefaultedFields++
		}
		if rec.Close, ok = parseFloat(fields[colClose]); !ok {
			rep.DefaultedFields++
		}
		if rec.High, ok = parseFloat(fields[colHigh]); !ok {
			rep.DefaultedFields++
		}
		if rec.Low, ok = parseFloat(fields[colLow]); !ok {
			rep.DefaultedFields++
		}
		if len(fields) > colTransactions {
			if rec.Transactions, ok = parseInt(fields[colTransactions]); !ok {
				rep.DefaultedFields++
			}
		}
		if rec.TimestampMillis, ok = ResolveWindowStart(fields[colWindowStart], now); !ok {
			rep.ClockFallbacks++
		}

		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TimestampMillis < records[j].TimestampMillis
	})
	rep.Parsed = len(records)
	return records, rep
}

func (p *Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// ResolveWindowStart converts a window_start field into Unix milliseconds.
// Strings longer than 13 characters are nanoseconds, integers below 1e12 are
// seconds, anything else is already milliseconds. Decimals are truncated.
// When raw is empty or not a number it returns now in milliseconds and false.
func ResolveWindowStart(raw string, now time.Time) (int64, bool) {
	raw = strings.TrimSpace(raw)
	v, ok := parseInt(raw)
	if !ok {
		return now.UnixMilli(), false
	}
	if len(raw) > msDigits {
		return v / nsPerMs, true
	}
	if v < msThreshold {
		return v * 1000, true
	}
	return v, true
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func headerMatches(header []string) bool {
	if len(header) != len(Columns) && len(header) != minFields {
		return false
	}
	for i, name := range header {
		if !strings.EqualFold(name, Columns[i]) {
			return false
		}
	}
	return true
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseInt accepts plain integers and truncates finite decimals such as "4930.0".
func parseInt(s string) (int64, bool) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, ok := parseFloat(s)
	if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
