package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/Stormmysea/stock-website/internal/model"
)

// ScrapeSource extracts headlines from an HTML page. Every element matching
// ItemSelector is one headline; the title is the text of TitleSelector (or
// the item itself) and the link is the first href found inside it.
type ScrapeSource struct {
	client *resty.Client

	PageURL        string
	SourceName     string
	ItemSelector   string
	TitleSelector  string
	SourceSelector string
	Now            func() time.Time
}

// NewScrapeSource creates a scraper for pageURL. Empty selectors default to
// "article" items with an "a" title.
func NewScrapeSource(pageURL, itemSelector, titleSelector string) *ScrapeSource {
	if itemSelector == "" {
		itemSelector = "article"
	}
	if titleSelector == "" {
		titleSelector = "a"
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; stockdash/1.0)")

	name := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Host != "" {
		name = u.Host
	}
	return &ScrapeSource{
		client:        client,
		PageURL:       pageURL,
		SourceName:    name,
		ItemSelector:  itemSelector,
		TitleSelector: titleSelector,
	}
}

func (s *ScrapeSource) Name() string { return "scrape" }

func (s *ScrapeSource) Fetch(ctx context.Context) ([]model.NewsItem, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.PageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.PageURL, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("fetch %s: status %d", s.PageURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.PageURL, err)
	}
	return s.parse(doc), nil
}

func (s *ScrapeSource) parse(doc *goquery.Document) []model.NewsItem {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	base, _ := url.Parse(s.PageURL)

	var items []model.NewsItem
	seen := make(map[string]bool)
	doc.Find(s.ItemSelector).Each(func(_ int, sel *goquery.Selection) {
		titleSel := sel.Find(s.TitleSelector).First()
		if titleSel.Length() == 0 {
			titleSel = sel
		}
		title := strings.Join(strings.Fields(titleSel.Text()), " ")
		if title == "" || seen[title] {
			return
		}
		seen[title] = true

		link, ok := titleSel.Attr("href")
		if !ok {
			link, _ = sel.Find("a[href]").First().Attr("href")
		}
		if base != nil && link != "" {
			if ref, err := base.Parse(link); err == nil {
				link = ref.String()
			}
		}
		if link == "" {
			link = "#"
		}

		source := s.SourceName
		if s.SourceSelector != "" {
			if t := strings.TrimSpace(sel.Find(s.SourceSelector).First().Text()); t != "" {
				source = t
			}
		}
		items = append(items, model.NewsItem{
			Title:  title,
			Source: source,
			Date:   now.Format(DateLayout),
			URL:    link,
		})
	})
	return items
}
