package model

import (
	"fmt"
	"time"
)

// Config holds the complete termlens configuration
type Config struct {
	Catalog      CatalogConfig      `yaml:"catalog" mapstructure:"catalog"`
	Engine       EngineConfig       `yaml:"engine" mapstructure:"engine"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// CatalogConfig selects the pattern catalog
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // empty = built-in catalog
}

// BaseScore is the score of a document with no matched categories
const BaseScore = 100

// EngineConfig tunes matching and aggregation
type EngineConfig struct {
	// CompoundMatches multiplies a risk deduction by its match count.
	// Off by default: a risk is deducted once however often it appears.
	CompoundMatches bool `yaml:"compound_matches" mapstructure:"compound_matches"`
	ExcerptRadius   int  `yaml:"excerpt_radius" mapstructure:"excerpt_radius"` // runes of context on each side
	MaxExcerpts     int  `yaml:"max_excerpts" mapstructure:"max_excerpts"`     // per category, 0 disables
}

// Fingerprint identifies the settings that change an analysis result
func (c EngineConfig) Fingerprint() string {
	return fmt.Sprintf("compound=%t;radius=%d;excerpts=%d", c.CompoundMatches, c.ExcerptRadius, c.MaxExcerpts)
}

// HTTPConfig configures URL sources
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures analysis memoization
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig configures per-domain limits for URL sources
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// LLMConfig configures the optional summary provider
type LLMConfig struct {
	Provider     string `yaml:"provider" mapstructure:"provider"` // "", openai, ollama
	Model        string `yaml:"model" mapstructure:"model"`
	APIKey       string `yaml:"-" mapstructure:"api_key"`
	BaseURL      string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout      int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens    int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	StrictQuotes bool   `yaml:"strict_quotes" mapstructure:"strict_quotes"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			CompoundMatches: false,
			ExcerptRadius:   60,
			MaxExcerpts:     3,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "termlens/0.1 (+https://github.com/ppiankov/termlens)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
			Dir:       ".termlens-cache",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Timeout:      30,
			MaxTokens:    800,
			StrictQuotes: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
