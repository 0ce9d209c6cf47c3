// Package search indexes the watchlist for the terminal filter and lookup
// commands.
package search

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Listing is one watchlist entry.
type Listing struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CompanyNames maps the default watchlist to display names.
var CompanyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"GOOGL": "Alphabet Inc.",
	"MSFT":  "Microsoft Corp.",
	"AMZN":  "Amazon.com Inc.",
	"TSLA":  "Tesla Inc.",
	"META":  "Meta Platforms",
	"NVDA":  "NVIDIA Corp.",
	"NFLX":  "Netflix Inc.",
	"AMD":   "Advanced Micro Devices",
	"INTC":  "Intel Corp.",
	"ORCL":  "Oracle Corp.",
	"IBM":   "IBM Corp.",
}

// Listings builds listings for symbols, naming them from CompanyNames.
func Listings(symbols []string) []Listing {
	out := make([]Listing, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		name, ok := CompanyNames[s]
		if !ok {
			name = s
		}
		out = append(out, Listing{Symbol: s, Name: name})
	}
	return out
}

// indexed is the stored form; the symbol is lowercased for the keyword field.
type indexed struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Index is an in-memory bleve index over a fixed watchlist. Results keep
// watchlist order.
type Index struct {
	index    bleve.Index
	listings []Listing
	position map[string]int
}

// NewIndex indexes listings in memory.
func NewIndex(listings []Listing) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	position := make(map[string]int, len(listings))
	batch := idx.NewBatch()
	for i, l := range listings {
		if _, dup := position[l.Symbol]; dup {
			continue
		}
		position[l.Symbol] = i
		doc := indexed{Symbol: strings.ToLower(l.Symbol), Name: l.Name}
		if err := batch.Index(l.Symbol, doc); err != nil {
			idx.Close()
			return nil, fmt.Errorf("index %s: %w", l.Symbol, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("index batch: %w", err)
	}

	return &Index{index: idx, listings: listings, position: position}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	symbolField := bleve.NewTextFieldMapping()
	symbolField.Analyzer = keyword.Name
	symbolField.Store = true
	doc.AddFieldMappingsAt("symbol", symbolField)

	nameField := bleve.NewTextFieldMapping()
	nameField.Store = true
	doc.AddFieldMappingsAt("name", nameField)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

// All returns every listing in watchlist order.
func (x *Index) All() []Listing {
	out := make([]Listing, len(x.listings))
	copy(out, x.listings)
	return out
}

// Symbols returns the watchlist symbols.
func (x *Index) Symbols() []string {
	out := make([]string, len(x.listings))
	for i, l := range x.listings {
		out[i] = l.Symbol
	}
	return out
}

// Filter returns the listings whose symbol contains term (case-insensitive)
// or whose name matches it. An empty term returns every listing.
func (x *Index) Filter(term string) []Listing {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return x.All()
	}
	clean := strings.Map(func(r rune) rune {
		if r == '*' || r == '?' || r == '\\' {
			return -1
		}
		return r
	}, term)
	if clean == "" {
		return []Listing{}
	}

	symbolQuery := bleve.NewWildcardQuery("*" + clean + "*")
	symbolQuery.SetField("symbol")
	nameQuery := bleve.NewMatchQuery(clean)
	nameQuery.SetField("name")

	return x.run(bleve.NewDisjunctionQuery(symbolQuery, nameQuery))
}

// Lookup returns the listing with exactly symbol.
func (x *Index) Lookup(symbol string) (Listing, bool) {
	termQuery := bleve.NewTermQuery(strings.ToLower(strings.TrimSpace(symbol)))
	termQuery.SetField("symbol")
	hits := x.run(termQuery)
	if len(hits) == 0 {
		return Listing{}, false
	}
	return hits[0], true
}

func (x *Index) run(q query.Query) []Listing {
	req := bleve.NewSearchRequest(q)
	req.Size = len(x.listings)
	if req.Size == 0 {
		return []Listing{}
	}
	res, err := x.index.Search(req)
	if err != nil {
		log.Printf("[WARN] search error: %v", err)
		return []Listing{}
	}

	positions := make([]int, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if p, ok := x.position[hit.ID]; ok {
			positions = append(positions, p)
		}
	}
	sort.Ints(positions)

	out := make([]Listing, len(positions))
	for i, p := range positions {
		out[i] = x.listings[p]
	}
	return out
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}
