package domain

import "time"

// Domain contains the core models shared across the aggregation pipeline.

// Article is the canonical, provider-agnostic article shape every source
// adapter produces. URL is the durable identity: two articles with the same
// URL are the same article regardless of title or description drift.
type Article struct {
	Title       string
	Description string
	URL         string
	ImageURL    string
	Source      Source
	PublishedAt time.Time
	Category    string

	// Embedding is attached transiently during semantic deduplication and is
	// never persisted.
	Embedding []float32 `json:"-"`
}

// StoredArticle is an Article that has been persisted, carrying the durable
// row identity assigned by the store.
type StoredArticle struct {
	ID       string
	StoredAt time.Time
	Article
}

// Subscription is a keyword watch owned by a user. The pipeline only ever
// reads subscriptions; creation and editing live outside this module.
type Subscription struct {
	ID       string
	OwnerID  string
	Keywords []string
	Active   bool
}

// TrendDirection classifies how a category's volume is moving.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendSignal summarizes recent article volume for one category.
type TrendSignal struct {
	Category      string
	Direction     TrendDirection
	ArticleCount  int
	ChangePercent float64
}
