package embed

import (
	"testing"

	"github.com/newsdesk-hq/newsdesk/internal/config"
)

func TestFromConfigWithoutProvider(t *testing.T) {
	oracle, err := FromConfig(config.EmbeddingsConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle != nil {
		t.Error("expected nil oracle when no provider is configured")
	}
}

func TestFromConfigWithoutKey(t *testing.T) {
	oracle, err := FromConfig(config.EmbeddingsConfig{Provider: "openai"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle != nil {
		t.Error("expected nil oracle when the provider has no key")
	}
}

func TestFromConfigUnknownProvider(t *testing.T) {
	_, err := FromConfig(config.EmbeddingsConfig{Provider: "quantum", APIKey: "k"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestFromConfigSelectsOpenAI(t *testing.T) {
	oracle, err := FromConfig(config.EmbeddingsConfig{Provider: "OpenAI", APIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle == nil {
		t.Fatal("expected an oracle")
	}
	if oracle.Model() != defaultOpenAIModel {
		t.Errorf("expected default openai model, got %q", oracle.Model())
	}
}

func TestFromConfigSelectsCohere(t *testing.T) {
	oracle, err := FromConfig(config.EmbeddingsConfig{Provider: "cohere", APIKey: "k", Model: "embed-v4"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle == nil {
		t.Fatal("expected an oracle")
	}
	if oracle.Model() != "embed-v4" {
		t.Errorf("expected configured model kept, got %q", oracle.Model())
	}
}
