// Package subscriptions loads keyword watches from a YAML or JSON file.
// The pipeline only reads subscriptions; creating and editing them happens
// outside this module.
package subscriptions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

// configFile represents the structure of the subscriptions file.
type configFile struct {
	Subscriptions []subscriptionConfig `json:"subscriptions" yaml:"subscriptions"`
}

// subscriptionConfig is a single subscription entry as declared on disk.
type subscriptionConfig struct {
	ID       string   `json:"id" yaml:"id"`
	OwnerID  string   `json:"owner_id" yaml:"owner_id"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Active   *bool    `json:"active" yaml:"active"`
}

// FileSource serves subscriptions loaded from a config file.
type FileSource struct {
	mu   sync.RWMutex
	subs []domain.Subscription
}

// LoadFile reads the subscriptions file, expands ${ENV} references, and
// validates every entry.
func LoadFile(path string) (*FileSource, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("subscriptions file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subscriptions file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(raw)))

	file, err := parseSubscriptions(expanded, filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	src := &FileSource{subs: make([]domain.Subscription, 0, len(file.Subscriptions))}
	seen := make(map[string]struct{}, len(file.Subscriptions))

	for i := range file.Subscriptions {
		sub := sanitizeSubscription(file.Subscriptions[i])
		if err := validateSubscription(sub); err != nil {
			return nil, fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		if _, exists := seen[sub.ID]; exists {
			return nil, fmt.Errorf("duplicate subscription id %q", sub.ID)
		}
		seen[sub.ID] = struct{}{}
		src.subs = append(src.subs, sub)
	}

	return src, nil
}

// parseSubscriptions decodes the file content by extension.
func parseSubscriptions(data []byte, ext string) (configFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file configFile
		if err := d.fn(data, &file); err != nil {
			return configFile{}, fmt.Errorf("decode %s subscriptions: %w", d.name, err)
		}
		return file, nil
	}

	return configFile{}, errors.New("subscriptions file format not recognized (expected YAML or JSON)")
}

// sanitizeSubscription trims fields and drops blank keywords. Active
// defaults to true when omitted.
func sanitizeSubscription(cfg subscriptionConfig) domain.Subscription {
	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	active := true
	if cfg.Active != nil {
		active = *cfg.Active
	}

	return domain.Subscription{
		ID:       strings.TrimSpace(cfg.ID),
		OwnerID:  strings.TrimSpace(cfg.OwnerID),
		Keywords: keywords,
		Active:   active,
	}
}

func validateSubscription(sub domain.Subscription) error {
	if sub.ID == "" {
		return errors.New("id is required")
	}
	if sub.OwnerID == "" {
		return fmt.Errorf("owner_id is required for subscription %q", sub.ID)
	}
	if len(sub.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required for subscription %q", sub.ID)
	}
	return nil
}

// ListActive returns the active subscriptions.
func (s *FileSource) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.Active {
			out = append(out, sub)
		}
	}
	return out, nil
}

// All returns every loaded subscription regardless of active state.
func (s *FileSource) All() []domain.Subscription {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Subscription, len(s.subs))
	copy(out, s.subs)
	return out
}
