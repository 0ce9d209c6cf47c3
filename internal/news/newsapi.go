package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Stormmysea/stock-website/internal/model"
)

const newsAPIURL = "https://newsapi.org"

// NewsAPISource queries the NewsAPI "everything" endpoint.
type NewsAPISource struct {
	client *resty.Client
	apiKey string
	Query  string
}

// NewNewsAPISource creates a NewsAPI client. An empty baseURL uses the
// public endpoint.
func NewNewsAPISource(baseURL, apiKey, proxyURL string) *NewsAPISource {
	if baseURL == "" {
		baseURL = newsAPIURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &NewsAPISource{client: client, apiKey: apiKey, Query: "stock market"}
}

func (s *NewsAPISource) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (s *NewsAPISource) Fetch(ctx context.Context) ([]model.NewsItem, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("newsapi: no api key configured")
	}
	var result newsAPIResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        s.Query,
			"sortBy":   "publishedAt",
			"language": "en",
		}).
		SetHeader("X-Api-Key", s.apiKey).
		SetResult(&result).
		SetError(&result).
		Get("/v2/everything")
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	if resp.IsError() || result.Status != "ok" {
		return nil, fmt.Errorf("newsapi: status %d: %s %s", resp.StatusCode(), result.Code, result.Message)
	}

	items := make([]model.NewsItem, 0, len(result.Articles))
	for _, a := range result.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		items = append(items, model.NewsItem{
			Title:  title,
			Source: a.Source.Name,
			Date:   a.PublishedAt.Format(DateLayout),
			URL:    a.URL,
		})
	}
	return items, nil
}
