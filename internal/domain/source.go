package domain

import (
	"fmt"
	"strings"
)

// Source identifies one of the supported upstream news providers. It is a
// closed set: filtering and display logic switch over the constants below
// rather than comparing free-form strings.
type Source string

const (
	SourceNewsAPI    Source = "newsapi"
	SourceGNews      Source = "gnews"
	SourceNewsData   Source = "newsdata"
	SourceGoogleNews Source = "googlenews"
)

// FilterAll selects every registered provider in a search.
const FilterAll = "all"

// Sources returns every known provider identity in canonical order. The
// order matters: adapter results are concatenated in this order before
// deduplication, so tie-breaks stay reproducible across runs.
func Sources() []Source {
	return []Source{SourceNewsAPI, SourceGNews, SourceNewsData, SourceGoogleNews}
}

// Valid reports whether s names a known provider.
func (s Source) Valid() bool {
	switch s {
	case SourceNewsAPI, SourceGNews, SourceNewsData, SourceGoogleNews:
		return true
	}
	return false
}

// ParseSource resolves user input to a provider identity.
func ParseSource(raw string) (Source, error) {
	s := Source(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown source %q", raw)
	}
	return s, nil
}

// SourceFilter restricts a search to one provider, or to all of them.
// The zero value selects all providers.
type SourceFilter struct {
	source Source
	all    bool
}

// AllSources is the filter matching every registered provider.
func AllSources() SourceFilter {
	return SourceFilter{all: true}
}

// OneSource builds a filter matching a single provider.
func OneSource(s Source) SourceFilter {
	return SourceFilter{source: s}
}

// ParseSourceFilter accepts "", "all", or a provider id.
func ParseSourceFilter(raw string) (SourceFilter, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" || trimmed == FilterAll {
		return AllSources(), nil
	}

	s, err := ParseSource(trimmed)
	if err != nil {
		return SourceFilter{}, err
	}
	return OneSource(s), nil
}

// Matches reports whether the filter admits the given provider.
func (f SourceFilter) Matches(s Source) bool {
	if f.all || f.source == "" {
		return true
	}
	return f.source == s
}

// All reports whether the filter admits every provider.
func (f SourceFilter) All() bool {
	return f.all || f.source == ""
}
