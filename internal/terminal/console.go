// Package terminal interprets the dashboard's command line.
package terminal

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Stormmysea/stock-website/internal/model"
	"github.com/Stormmysea/stock-website/internal/search"
)

// Prompt prefixes every rendered line.
const Prompt = "stockos@market:~$"

// HistorySize is the number of lines the console keeps.
const HistorySize = 10

// Kind classifies an output line for colouring.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindCommand Kind = "command"
)

// Line is one line of console output.
type Line struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

func (l Line) String() string {
	return Prompt + " " + l.Text
}

// QuoteSource resolves a symbol to its latest loaded quote.
type QuoteSource interface {
	Quote(symbol string) (model.Quote, bool)
}

// Console executes commands against the watchlist index and the current
// quotes. It is safe for concurrent use.
type Console struct {
	Index *search.Index
	// Quotes returns the current quote source; nil before the first refresh.
	Quotes func() QuoteSource

	mu      sync.Mutex
	history []Line
}

// NewConsole creates a console.
func NewConsole(index *search.Index, quotes func() QuoteSource) *Console {
	return &Console{Index: index, Quotes: quotes}
}

// Result is the outcome of one command.
type Result struct {
	Lines []Line `json:"lines"`
	// Matches lists the symbols whose cards stay visible; nil means no change.
	Matches []string `json:"matches"`
	// Clear reports that earlier output was discarded.
	Clear bool `json:"clear,omitempty"`
}

// Handle executes input and returns the lines it produced.
func (c *Console) Handle(input string) []Line {
	return c.Run(input).Lines
}

// Run executes input and returns its full result.
func (c *Console) Run(input string) Result {
	value := strings.TrimSpace(input)
	if value == "" {
		return Result{}
	}

	cmd := strings.ToLower(value)
	var res Result
	switch {
	case cmd == "help" || cmd == "h":
		res.Lines = []Line{
			{KindInfo, "Available commands:"},
			{KindCommand, "  search [SYMBOL] - Search for specific stock (e.g., search AAPL)"},
			{KindCommand, "  clear - Clear terminal output"},
			{KindCommand, "  list - Show all available stocks"},
			{KindCommand, "  [SYMBOL] - Filter stocks by symbol (e.g., AAPL, TSLA)"},
		}
	case cmd == "clear" || cmd == "cls":
		line := Line{KindInfo, "Terminal cleared. Ready for commands..."}
		c.mu.Lock()
		c.history = []Line{line}
		c.mu.Unlock()
		return Result{Lines: []Line{line}, Clear: true}
	case cmd == "list":
		res.Lines = []Line{{KindInfo, "Available stocks: " + strings.Join(c.Index.Symbols(), ", ")}}
	case strings.HasPrefix(cmd, "search "):
		symbol := strings.ToUpper(strings.TrimSpace(value[len("search "):]))
		line, found := c.searchSymbol(symbol)
		res.Lines = []Line{{KindCommand, "search " + symbol}, line}
		if found {
			res.Matches = []string{symbol}
		}
	default:
		res.Matches = c.Matches(value)
		res.Lines = []Line{filterLine(value, len(res.Matches))}
	}

	c.append(res.Lines)
	return res
}

func (c *Console) searchSymbol(symbol string) (Line, bool) {
	if c.Quotes != nil {
		if src := c.Quotes(); src != nil {
			if q, ok := src.Quote(symbol); ok {
				sign := ""
				if q.Up() {
					sign = "+"
				}
				return Line{KindSuccess, fmt.Sprintf("%s: $%.2f (%s%.2f%%)", symbol, q.Price, sign, q.ChangePercent)}, true
			}
		}
	}
	if _, ok := c.Index.Lookup(symbol); ok {
		return Line{KindInfo, fmt.Sprintf("Loading %s data...", symbol)}, false
	}
	return Line{KindError, fmt.Sprintf("Stock %q not available. Available: %s", symbol, strings.Join(c.Index.Symbols(), ", "))}, false
}

func filterLine(term string, n int) Line {
	if n == 0 {
		return Line{KindError, fmt.Sprintf("No stocks found matching %q", term)}
	}
	return Line{KindSuccess, fmt.Sprintf("Found %d stock(s) matching %q", n, term)}
}

// Matches returns the symbols a filter term selects, in watchlist order.
func (c *Console) Matches(term string) []string {
	ls := c.Index.Filter(term)
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Symbol
	}
	return out
}

func (c *Console) append(lines []Line) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, lines...)
	if n := len(c.history); n > HistorySize {
		c.history = append([]Line(nil), c.history[n-HistorySize:]...)
	}
}

// History returns the retained output, oldest first.
func (c *Console) History() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.history))
	copy(out, c.history)
	return out
}
