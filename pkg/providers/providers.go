// Package providers implements the upstream news source adapters. Each
// fetcher maps one provider's API response onto domain.Article; the registry
// fans a query out across all of them.
package providers

import (
	"context"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/pkg/httpclient"
)

// HTTPClient is the outbound HTTP surface fetchers depend on.
type HTTPClient = httpclient.Client

// Query carries the search terms handed to every fetcher. Zero From/To
// leave the date range unbounded on that side.
type Query struct {
	Keyword string
	From    time.Time
	To      time.Time
}

// Bounded reports whether the query restricts the publication window.
func (q Query) Bounded() bool {
	return !q.From.IsZero() || !q.To.IsZero()
}

// Contains reports whether ts falls inside the query window. Articles with
// an unknown publication time pass any window.
func (q Query) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}
	if !q.From.IsZero() && ts.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && ts.After(q.To) {
		return false
	}
	return true
}

// Fetcher retrieves articles matching a query from one upstream provider.
// Implementations with missing credentials return an empty result rather
// than an error.
type Fetcher interface {
	Source() domain.Source
	Fetch(ctx context.Context, q Query) ([]domain.Article, error)
}

// DefaultHTTPClient returns a tuned HTTP client for provider fetchers.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }
