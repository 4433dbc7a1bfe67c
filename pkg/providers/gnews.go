package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

const (
	gnewsBaseURL    = "https://gnews.io/api/v4"
	gnewsMaxResults = 50
)

// gnewsFetcher queries the GNews /api/v4/search endpoint.
type gnewsFetcher struct {
	client  HTTPClient
	apiKey  string
	baseURL string
}

// NewGNewsFetcher builds a fetcher for GNews.
func NewGNewsFetcher(client HTTPClient, apiKey, baseURL string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = gnewsBaseURL
	}
	return &gnewsFetcher{
		client:  client,
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *gnewsFetcher) Source() domain.Source {
	return domain.SourceGNews
}

func (f *gnewsFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("lang", "en")
	params.Set("max", strconv.Itoa(gnewsMaxResults))
	params.Set("apikey", f.apiKey)
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.UTC().Format(time.RFC3339))
	}

	endpoint := f.baseURL + "/search?" + params.Encode()

	body, err := fetchBody(ctx, f.client, endpoint, string(domain.SourceGNews), nil)
	if err != nil {
		return nil, err
	}

	var payload gnewsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode gnews response: %w", err)
	}

	return buildGNewsArticles(payload.Articles), nil
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

type gnewsArticle struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URL         string      `json:"url"`
	Image       string      `json:"image"`
	PublishedAt string      `json:"publishedAt"`
	Source      gnewsSource `json:"source"`
}

type gnewsSource struct {
	Name string `json:"name"`
}

func buildGNewsArticles(items []gnewsArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		link := strings.TrimSpace(item.URL)
		if link == "" {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       titleOrUntitled(item.Title),
			Description: cleanText(item.Description),
			URL:         link,
			ImageURL:    strings.TrimSpace(item.Image),
			Source:      domain.SourceGNews,
			PublishedAt: parseRFC3339(item.PublishedAt),
		})
	}
	return articles
}
