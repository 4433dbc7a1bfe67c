// Package config loads runtime settings from defaults, an optional YAML
// file, and NEWSDESK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix       = "NEWSDESK"
	defaultFileName = "newsdesk"
)

// Config holds the settings required across the pipeline.
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Store         StoreConfig         `mapstructure:"store"`
	HTTP          HTTPConfig          `mapstructure:"http"`
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Embeddings    EmbeddingsConfig    `mapstructure:"embeddings"`
	Dedup         DedupConfig         `mapstructure:"dedup"`
	Trends        TrendsConfig        `mapstructure:"trends"`
	Monitor       MonitorConfig       `mapstructure:"monitor"`
	Enrich        EnrichConfig        `mapstructure:"enrich"`
	Subscriptions SubscriptionsConfig `mapstructure:"subscriptions"`
	Publishers    PublishersConfig    `mapstructure:"publishers"`
}

// LogConfig selects the logger level and encoder.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Env   string `mapstructure:"env"`
}

// StoreConfig describes the bbolt database location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// HTTPConfig bounds outbound HTTP calls.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProvidersConfig groups per-provider credentials and endpoints. A blank
// APIKey disables the keyed providers without failing the run.
type ProvidersConfig struct {
	Timeout    time.Duration    `mapstructure:"timeout"`
	NewsAPI    KeyedProvider    `mapstructure:"newsapi"`
	GNews      KeyedProvider    `mapstructure:"gnews"`
	NewsData   KeyedProvider    `mapstructure:"newsdata"`
	GoogleNews GoogleNewsConfig `mapstructure:"googlenews"`
}

// KeyedProvider configures a provider that authenticates with an API key.
// BaseURL overrides the provider endpoint, mainly for tests.
type KeyedProvider struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// GoogleNewsConfig configures the keyless RSS provider.
type GoogleNewsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// EmbeddingsConfig selects the embedding backend. An empty Provider leaves
// semantic deduplication switched off.
type EmbeddingsConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	BaseURL  string `mapstructure:"base_url"`
}

// DedupConfig tunes the semantic deduplication pass.
type DedupConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	EmbedWorkers        int     `mapstructure:"embed_workers"`
	EmbedRatePerSec     int     `mapstructure:"embed_rate_per_sec"`
}

// TrendsConfig shapes the trailing trend window.
type TrendsConfig struct {
	WindowDays int `mapstructure:"window_days"`
	TopN       int `mapstructure:"top_n"`
}

// MonitorConfig drives the breaking-news polling loop.
type MonitorConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Lookback     time.Duration `mapstructure:"lookback"`
	Workers      int           `mapstructure:"workers"`
	PreviewSize  int           `mapstructure:"preview_size"`
}

// EnrichConfig gates the article-page metadata crawler.
type EnrichConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SubscriptionsConfig points at the keyword-subscription file.
type SubscriptionsConfig struct {
	Path string `mapstructure:"path"`
}

// PublishersConfig points at the notification-publisher registry file.
type PublishersConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from the given file (optional; "" probes
// ./newsdesk.yaml) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.env", "development")

	v.SetDefault("store.path", "newsdesk.db")

	v.SetDefault("http.timeout", 15*time.Second)

	v.SetDefault("providers.timeout", 10*time.Second)
	v.SetDefault("providers.googlenews.enabled", true)

	v.SetDefault("embeddings.provider", "")
	v.SetDefault("embeddings.model", "")

	v.SetDefault("dedup.similarity_threshold", 0.85)
	v.SetDefault("dedup.embed_workers", 10)
	v.SetDefault("dedup.embed_rate_per_sec", 10)

	v.SetDefault("trends.window_days", 7)
	v.SetDefault("trends.top_n", 5)

	v.SetDefault("monitor.interval", 2*time.Minute)
	v.SetDefault("monitor.initial_delay", 30*time.Second)
	v.SetDefault("monitor.lookback", 5*time.Minute)
	v.SetDefault("monitor.workers", 4)
	v.SetDefault("monitor.preview_size", 3)

	v.SetDefault("enrich.enabled", false)

	v.SetDefault("subscriptions.path", "")
	v.SetDefault("publishers.path", "")
}
