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
	newsAPIBaseURL  = "https://newsapi.org/v2"
	newsAPIPageSize = 50
)

// newsAPIFetcher queries the NewsAPI /v2/everything endpoint.
type newsAPIFetcher struct {
	client  HTTPClient
	apiKey  string
	baseURL string
}

// NewNewsAPIFetcher builds a fetcher for NewsAPI. baseURL overrides the
// production endpoint, mainly for tests.
func NewNewsAPIFetcher(client HTTPClient, apiKey, baseURL string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = newsAPIBaseURL
	}
	return &newsAPIFetcher{
		client:  client,
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *newsAPIFetcher) Source() domain.Source {
	return domain.SourceNewsAPI
}

func (f *newsAPIFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", q.Keyword)
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	if !q.From.IsZero() {
		params.Set("from", q.From.UTC().Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		params.Set("to", q.To.UTC().Format(time.RFC3339))
	}

	endpoint := f.baseURL + "/everything?" + params.Encode()
	headers := map[string]string{"X-Api-Key": f.apiKey}

	body, err := fetchBody(ctx, f.client, endpoint, string(domain.SourceNewsAPI), headers)
	if err != nil {
		return nil, err
	}

	var payload newsAPIResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if payload.Status != "" && payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi returned status %q: %s", payload.Status, payload.Message)
	}

	return buildNewsAPIArticles(payload.Articles), nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
}

type newsAPISource struct {
	Name string `json:"name"`
}

func buildNewsAPIArticles(items []newsAPIArticle) []domain.Article {
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
			ImageURL:    strings.TrimSpace(item.URLToImage),
			Source:      domain.SourceNewsAPI,
			PublishedAt: parseRFC3339(item.PublishedAt),
		})
	}
	return articles
}
