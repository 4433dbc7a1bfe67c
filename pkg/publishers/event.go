// Package publishers delivers breaking-news alert events to configured
// sinks: cloud queues, Kafka topics, or plain HTTP endpoints. Sinks are
// declared in a YAML/JSON registry file and built through per-type
// builders.
package publishers

import (
	"context"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/logger"
)

// Event is the alert payload delivered when a subscription matches fresh
// articles.
type Event struct {
	ID             string         `json:"id"`
	SubscriptionID string         `json:"subscription_id"`
	OwnerID        string         `json:"owner_id"`
	Keywords       []string       `json:"keywords"`
	Articles       []EventArticle `json:"articles"`
	TotalCount     int            `json:"total_count"`
	TriggeredAt    time.Time      `json:"triggered_at"`
}

// EventArticle is the trimmed article shape embedded in alert payloads.
type EventArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Publisher delivers events to one configured sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Logger aliases the module logger to keep publisher signatures short.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}
