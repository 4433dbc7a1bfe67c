package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/newsdesk-hq/newsdesk/pkg/httpclient"
)

const (
	defaultOpenAIModel    = "text-embedding-3-small"
	defaultOpenAIEndpoint = "https://api.openai.com/v1/embeddings"
)

// openAIOracle calls the OpenAI embeddings endpoint.
type openAIOracle struct {
	client   httpclient.Client
	apiKey   string
	model    string
	endpoint string
}

func newOpenAIOracle(client httpclient.Client, apiKey, model, baseURL string) *openAIOracle {
	if client == nil {
		client = httpclient.NewRestyClient(60 * time.Second)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultOpenAIEndpoint
	}
	return &openAIOracle{
		client:   client,
		apiKey:   strings.TrimSpace(apiKey),
		model:    model,
		endpoint: endpoint,
	}
}

func (o *openAIOracle) Model() string { return o.model }

type openAIEmbedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (o *openAIOracle) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	payload := openAIEmbedRequest{Input: texts, Model: o.model}

	resp, err := o.client.Post(ctx, o.endpoint, headers, payload)
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("openai embed returned status %d", resp.StatusCode())
	}

	var parsed openAIEmbedResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decode openai embed response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(parsed.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, d := range parsed.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[idx] = vec
	}
	return out, nil
}
