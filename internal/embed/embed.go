// Package embed wraps the external embedding backends used for semantic
// duplicate detection. The pipeline treats the oracle as optional: when no
// backend is configured the semantic pass is skipped entirely.
package embed

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsdesk-hq/newsdesk/internal/config"
	"github.com/newsdesk-hq/newsdesk/pkg/httpclient"
)

// Oracle produces one embedding vector per input text.
type Oracle interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// FromConfig selects an oracle from configuration. It returns (nil, nil)
// when no provider is configured or the configured provider has no API key,
// so callers can branch on a nil oracle.
func FromConfig(cfg config.EmbeddingsConfig, client httpclient.Client) (Oracle, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		return nil, nil
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}

	switch provider {
	case "cohere":
		return newCohereOracle(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case "openai":
		return newOpenAIOracle(client, cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Provider)
	}
}
