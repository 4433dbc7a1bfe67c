package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
)

const defaultFetchTimeout = 10 * time.Second

// Registry holds the configured fetchers in a fixed order. That order is
// also the concatenation order of FetchAll results, which keeps duplicate
// tie-breaking downstream reproducible across runs.
type Registry struct {
	fetchers []Fetcher
	timeout  time.Duration
	log      logger.Logger
}

// NewRegistry builds a registry over the given fetchers. timeout bounds
// each individual provider call; zero selects the default.
func NewRegistry(log logger.Logger, timeout time.Duration, fetchers ...Fetcher) *Registry {
	if log == nil {
		log = logger.NopLogger{}
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	reg := &Registry{timeout: timeout, log: log}
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		reg.fetchers = append(reg.fetchers, f)
	}
	return reg
}

// Sources lists the registered providers in registry order.
func (r *Registry) Sources() []domain.Source {
	out := make([]domain.Source, 0, len(r.fetchers))
	for _, f := range r.fetchers {
		out = append(out, f.Source())
	}
	return out
}

// FetcherFor selects the fetcher for the given source.
func (r *Registry) FetcherFor(src domain.Source) (Fetcher, error) {
	for _, f := range r.fetchers {
		if f.Source() == src {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no fetcher registered for source %q", src)
}

// FetchAll runs the query against every fetcher the filter selects,
// concurrently, and concatenates the results in registry order. Provider
// failures are absorbed: a failing fetcher contributes nothing and the
// error is logged, never returned.
func (r *Registry) FetchAll(ctx context.Context, q Query, filter domain.SourceFilter) []domain.Article {
	out := make([][]domain.Article, len(r.fetchers))

	var wg sync.WaitGroup
	for idx, f := range r.fetchers {
		if !filter.Matches(f.Source()) {
			continue
		}

		wg.Add(1)
		go func(idx int, f Fetcher) {
			defer wg.Done()

			fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			articles, err := f.Fetch(fetchCtx, q)
			if err != nil {
				r.log.WarnObj("provider fetch failed", "fetch_error", map[string]any{
					"source":  string(f.Source()),
					"keyword": q.Keyword,
					"error":   err.Error(),
				})
				return
			}
			out[idx] = articles
		}(idx, f)
	}
	wg.Wait()

	var merged []domain.Article
	for idx, articles := range out {
		if len(articles) == 0 {
			continue
		}
		r.log.DebugObj("provider fetch complete", "fetch_done", map[string]any{
			"source":   string(r.fetchers[idx].Source()),
			"keyword":  q.Keyword,
			"articles": len(articles),
		})
		merged = append(merged, articles...)
	}
	return merged
}
