package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete factstream configuration.
//
// Hierarchy (highest to lowest priority):
//  1. CLI flags
//  2. Environment variables (FACTSTREAM_*, PERPLEXITY_API_KEY, OPENAI_API_KEY)
//  3. Config file (~/.factstream/config.yaml)
//  4. Defaults
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Verify   VerifyConfig   `yaml:"verify" mapstructure:"verify"`
	Media    MediaConfig    `yaml:"media" mapstructure:"media"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Publish  PublishConfig  `yaml:"publish" mapstructure:"publish"`
}

// ServerConfig configures the HTTP/WebSocket transport
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// StoreConfig selects and configures the segment store backend
type StoreConfig struct {
	// PostgresDSN selects the Postgres store when non-empty; otherwise the
	// in-memory store is used.
	PostgresDSN string `yaml:"postgres_dsn" mapstructure:"postgres_dsn"`
}

// VerifyConfig configures the verification client
type VerifyConfig struct {
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Model        string        `yaml:"model" mapstructure:"model"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RateInterval time.Duration `yaml:"rate_interval" mapstructure:"rate_interval"`
	CacheTTL     time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// MediaConfig configures audio extraction and transcription
type MediaConfig struct {
	OpenAIAPIKey   string        `yaml:"openai_api_key" mapstructure:"openai_api_key"`
	WhisperModel   string        `yaml:"whisper_model" mapstructure:"whisper_model"`
	ExtractTimeout time.Duration `yaml:"extract_timeout" mapstructure:"extract_timeout"`
	TempDir        string        `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// PipelineConfig tunes the segment processing loop
type PipelineConfig struct {
	MinSegmentLength int           `yaml:"min_segment_length" mapstructure:"min_segment_length"`
	LiveWindow       time.Duration `yaml:"live_window" mapstructure:"live_window"`
	LiveErrorBackoff time.Duration `yaml:"live_error_backoff" mapstructure:"live_error_backoff"`
	StaticThrottle   time.Duration `yaml:"static_throttle" mapstructure:"static_throttle"`
}

// PublishConfig configures the optional AMQP result publisher
type PublishConfig struct {
	AMQPURL    string `yaml:"amqp_url" mapstructure:"amqp_url"`
	Exchange   string `yaml:"exchange" mapstructure:"exchange"`
	RoutingKey string `yaml:"routing_key" mapstructure:"routing_key"`
	Queue      string `yaml:"queue" mapstructure:"queue"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{},
		Verify: VerifyConfig{
			BaseURL:      "https://api.perplexity.ai",
			Model:        "sonar-pro",
			Timeout:      30 * time.Second,
			RateInterval: time.Second,
			CacheTTL:     10 * time.Minute,
		},
		Media: MediaConfig{
			WhisperModel:   "whisper-1",
			ExtractTimeout: 2 * time.Minute,
		},
		Pipeline: PipelineConfig{
			MinSegmentLength: 10,
			LiveWindow:       30 * time.Second,
			LiveErrorBackoff: 10 * time.Second,
			StaticThrottle:   2 * time.Second,
		},
		Publish: PublishConfig{
			Exchange:   "factstream.results",
			RoutingKey: "fact_check",
			Queue:      "factstream.results",
		},
	}
}

// Load builds the effective configuration from viper state plus well-known
// environment variables. Viper must already have its config file and env
// bindings initialized by the CLI layer.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// API keys come from their conventional env vars unless set explicitly
	if cfg.Verify.APIKey == "" {
		cfg.Verify.APIKey = os.Getenv("PERPLEXITY_API_KEY")
	}
	if cfg.Media.OpenAIAPIKey == "" {
		cfg.Media.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}
