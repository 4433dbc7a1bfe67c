package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

const (
	newsDataBaseURL = "https://newsdata.io/api/1"

	// NewsData serves naive UTC timestamps.
	newsDataTimeLayout = "2006-01-02 15:04:05"
)

// newsDataFetcher queries the NewsData /api/1/news endpoint. The endpoint
// has no date parameters on the free tier, so the query window is applied
// client-side.
type newsDataFetcher struct {
	client  HTTPClient
	apiKey  string
	baseURL string
}

// NewNewsDataFetcher builds a fetcher for NewsData.
func NewNewsDataFetcher(client HTTPClient, apiKey, baseURL string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = newsDataBaseURL
	}
	return &newsDataFetcher{
		client:  client,
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *newsDataFetcher) Source() domain.Source {
	return domain.SourceNewsData
}

func (f *newsDataFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("language", "en")
	params.Set("apikey", f.apiKey)

	endpoint := f.baseURL + "/news?" + params.Encode()

	body, err := fetchBody(ctx, f.client, endpoint, string(domain.SourceNewsData), nil)
	if err != nil {
		return nil, err
	}

	var payload newsDataResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode newsdata response: %w", err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return nil, fmt.Errorf("newsdata returned status %q", payload.Status)
	}

	return buildNewsDataArticles(payload.Results, q), nil
}

type newsDataResponse struct {
	Status  string            `json:"status"`
	Results []newsDataArticle `json:"results"`
}

type newsDataArticle struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	PubDate     string   `json:"pubDate"`
	SourceID    string   `json:"source_id"`
	Category    []string `json:"category"`
}

func buildNewsDataArticles(items []newsDataArticle, q Query) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		publishedAt := parseTimeUTC(item.PubDate, newsDataTimeLayout)
		if q.Bounded() && !q.Contains(publishedAt) {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       titleOrUntitled(item.Title),
			Description: cleanText(item.Description),
			URL:         link,
			ImageURL:    strings.TrimSpace(item.ImageURL),
			Source:      domain.SourceNewsData,
			PublishedAt: publishedAt,
			Category:    firstCategory(item.Category),
		})
	}
	return articles
}

// firstCategory picks the provider's leading category tag, skipping the
// catch-all "top" bucket NewsData puts on most items.
func firstCategory(categories []string) string {
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || c == "top" {
			continue
		}
		return c
	}
	return ""
}
