package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

const googleNewsBaseURL = "https://news.google.com/rss"

// googleNewsFetcher queries the keyless Google News RSS search feed.
type googleNewsFetcher struct {
	client  HTTPClient
	baseURL string
	parser  *gofeed.Parser
}

// NewGoogleNewsFetcher builds a fetcher for the Google News RSS feed.
func NewGoogleNewsFetcher(client HTTPClient, baseURL string) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleNewsBaseURL
	}
	return &googleNewsFetcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		parser:  gofeed.NewParser(),
	}
}

func (f *googleNewsFetcher) Source() domain.Source {
	return domain.SourceGoogleNews
}

func (f *googleNewsFetcher) Fetch(ctx context.Context, q Query) ([]domain.Article, error) {
	params := url.Values{}
	params.Set("q", googleNewsQuery(q))
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	endpoint := f.baseURL + "/search?" + params.Encode()

	body, err := fetchBody(ctx, f.client, endpoint, string(domain.SourceGoogleNews), nil)
	if err != nil {
		return nil, err
	}

	feed, err := f.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("decode google news feed: %w", err)
	}

	return buildGoogleNewsArticles(feed.Items, q), nil
}

// googleNewsQuery folds the date window into the query string using the
// feed's after:/before: operators.
func googleNewsQuery(q Query) string {
	parts := []string{q.Keyword}
	if !q.From.IsZero() {
		parts = append(parts, "after:"+q.From.UTC().Format("2006-01-02"))
	}
	if !q.To.IsZero() {
		parts = append(parts, "before:"+q.To.UTC().AddDate(0, 0, 1).Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

func buildGoogleNewsArticles(items []*gofeed.Item, q Query) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		publishedAt := feedTime(item)
		if q.Bounded() && !q.Contains(publishedAt) {
			continue
		}

		articles = append(articles, domain.Article{
			Title:       titleOrUntitled(stripPublisherSuffix(item.Title)),
			Description: cleanText(item.Description),
			URL:         link,
			ImageURL:    feedImage(item),
			Source:      domain.SourceGoogleNews,
			PublishedAt: publishedAt,
		})
	}
	return articles
}

func feedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

func feedImage(item *gofeed.Item) string {
	if item.Image != nil {
		return strings.TrimSpace(item.Image.URL)
	}
	return ""
}

// stripPublisherSuffix removes the " - Publisher" tail Google News appends
// to every item title.
func stripPublisherSuffix(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return title[:idx]
	}
	return title
}
