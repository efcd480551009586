// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resource-curator/internal/discovery"
	"github.com/jonathan/resource-curator/internal/llm"
	"github.com/jonathan/resource-curator/internal/logger"
	"github.com/jonathan/resource-curator/internal/observability"
	"github.com/jonathan/resource-curator/internal/pipeline"
	"github.com/jonathan/resource-curator/internal/querygen"
	"github.com/jonathan/resource-curator/internal/search"
)

// Config is the full application configuration. It can be loaded from a JSON
// or YAML file; environment variables override file values.
type Config struct {
	Port     int            `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Search   SearchConfig   `json:"search" yaml:"search"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`

	Tracing observability.TracingConfig `json:"tracing" yaml:"tracing"`
	Verbose bool                        `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// PipelineConfig holds the tunables of a generation run.
type PipelineConfig struct {
	MaxQueries      int      `json:"max_queries,omitempty" yaml:"max_queries,omitempty" validate:"gte=0,lte=50"`
	ResultsPerQuery int      `json:"results_per_query,omitempty" yaml:"results_per_query,omitempty" validate:"gte=0,lte=10"`
	RateLimitDelay  Duration `json:"rate_limit_delay,omitempty" yaml:"rate_limit_delay,omitempty"`
	PerCategoryCap  int      `json:"per_category_cap,omitempty" yaml:"per_category_cap,omitempty" validate:"gte=0"`
	LLMTimeout      Duration `json:"llm_timeout,omitempty" yaml:"llm_timeout,omitempty"`
	SearchTimeout   Duration `json:"search_timeout,omitempty" yaml:"search_timeout,omitempty"`
}

// LLMConfig selects the language model.
type LLMConfig struct {
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0,lte=2"`
}

// SearchConfig configures the web search capability and its cache.
type SearchConfig struct {
	APIKey    string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	EngineID  string   `json:"engine_id,omitempty" yaml:"engine_id,omitempty"`
	RedisURL  string   `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	CacheSize int      `json:"cache_size,omitempty" yaml:"cache_size,omitempty" validate:"gte=0"`
	CacheTTL  Duration `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`
}

// StorageConfig selects the persistence backend. DatabaseURL wins over SQLitePath.
type StorageConfig struct {
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Mode     string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,oneof=dev prod production"`
	Level    string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	Redact   bool   `json:"redact,omitempty" yaml:"redact,omitempty"`
	HashSalt string `json:"hash_salt,omitempty" yaml:"hash_salt,omitempty"`
}

// Duration is a time.Duration that unmarshals from strings like "500ms".
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	p := pipeline.DefaultConfig()
	return Config{
		Port: 8080,
		Pipeline: PipelineConfig{
			MaxQueries:      querygen.DefaultMaxQueries,
			ResultsPerQuery: 3,
			RateLimitDelay:  Duration(discovery.DefaultDelay),
			PerCategoryCap:  p.PerCategoryCap,
			LLMTimeout:      Duration(p.LLMTimeout),
			SearchTimeout:   Duration(p.SearchTimeout),
		},
		Search: SearchConfig{
			CacheSize: 512,
			CacheTTL:  Duration(24 * time.Hour),
		},
		Storage: StorageConfig{
			SQLitePath: filepath.Join("data", "curator.db"),
		},
		Logging: LoggingConfig{
			Mode:  "dev",
			Level: "info",
		},
		Tracing: observability.TracingConfig{
			ServiceName: "resource-curator",
			SampleRatio: 1,
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Load builds the effective configuration: file (optional), then
// environment overrides, then defaults, then validation.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("GEMINI_API_KEY", &c.LLM.APIKey)
	str("GEMINI_MODEL", &c.LLM.Model)
	str("GOOGLE_SEARCH_API_KEY", &c.Search.APIKey)
	str("GOOGLE_SEARCH_CX", &c.Search.EngineID)
	str("REDIS_URL", &c.Search.RedisURL)
	str("DATABASE_URL", &c.Storage.DatabaseURL)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("LOG_MODE", &c.Logging.Mode)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_HASH_SALT", &c.Logging.HashSalt)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.OTLPEndpoint)
	str("OTEL_SERVICE_NAME", &c.Tracing.ServiceName)

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v, ok := lookup("LOG_REDACT"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.Redact = b
		}
	}
	if v, ok := lookup("TRACING_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tracing.Enabled = b
		}
	}
	if v, ok := lookup("RATE_LIMIT_DELAY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.Pipeline.RateLimitDelay = Duration(d)
		}
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required credentials since commands that
// need them check at startup.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.Pipeline.RateLimitDelay < 0 {
		return fmt.Errorf("config error: 'rate_limit_delay' must be non-negative")
	}
	if c.Pipeline.LLMTimeout < 0 || c.Pipeline.SearchTimeout < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	if c.Search.EngineID != "" && c.Search.APIKey == "" {
		return fmt.Errorf("config error: 'search.engine_id' requires 'search.api_key'")
	}
	if c.Tracing.Enabled && c.Tracing.OTLPEndpoint == "" {
		return fmt.Errorf("config error: tracing enabled without an OTLP endpoint")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Pipeline: use default if zero
	if result.Pipeline.MaxQueries == 0 {
		result.Pipeline.MaxQueries = defaults.Pipeline.MaxQueries
	}
	if result.Pipeline.ResultsPerQuery == 0 {
		result.Pipeline.ResultsPerQuery = defaults.Pipeline.ResultsPerQuery
	}
	if result.Pipeline.RateLimitDelay == 0 {
		result.Pipeline.RateLimitDelay = defaults.Pipeline.RateLimitDelay
	}
	if result.Pipeline.PerCategoryCap == 0 {
		result.Pipeline.PerCategoryCap = defaults.Pipeline.PerCategoryCap
	}
	if result.Pipeline.LLMTimeout == 0 {
		result.Pipeline.LLMTimeout = defaults.Pipeline.LLMTimeout
	}
	if result.Pipeline.SearchTimeout == 0 {
		result.Pipeline.SearchTimeout = defaults.Pipeline.SearchTimeout
	}

	// String fields: use default if empty
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Model == "" {
		result.LLM.Model = defaults.LLM.Model
	}
	if result.Search.APIKey == "" {
		result.Search.APIKey = defaults.Search.APIKey
	}
	if result.Search.EngineID == "" {
		result.Search.EngineID = defaults.Search.EngineID
	}
	if result.Search.RedisURL == "" {
		result.Search.RedisURL = defaults.Search.RedisURL
	}
	if result.Search.CacheSize == 0 {
		result.Search.CacheSize = defaults.Search.CacheSize
	}
	if result.Search.CacheTTL == 0 {
		result.Search.CacheTTL = defaults.Search.CacheTTL
	}
	if result.Storage.DatabaseURL == "" {
		result.Storage.DatabaseURL = defaults.Storage.DatabaseURL
	}
	if result.Storage.SQLitePath == "" {
		result.Storage.SQLitePath = defaults.Storage.SQLitePath
	}
	if result.Logging.Mode == "" {
		result.Logging.Mode = defaults.Logging.Mode
	}
	if result.Logging.Level == "" {
		result.Logging.Level = defaults.Logging.Level
	}
	if result.Logging.HashSalt == "" {
		result.Logging.HashSalt = defaults.Logging.HashSalt
	}
	if result.Tracing.ServiceName == "" {
		result.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
	if result.Tracing.SampleRatio == 0 {
		result.Tracing.SampleRatio = defaults.Tracing.SampleRatio
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags and env should always win for bools)

	return result
}

// PipelineOptions converts the file representation into pipeline.Config.
func (c *Config) PipelineOptions() pipeline.Config {
	return pipeline.Config{
		MaxQueries:     c.Pipeline.MaxQueries,
		RateLimitDelay: c.Pipeline.RateLimitDelay.Std(),
		PerCategoryCap: c.Pipeline.PerCategoryCap,
		LLMTimeout:     c.Pipeline.LLMTimeout.Std(),
		SearchTimeout:  c.Pipeline.SearchTimeout.Std(),
	}
}

// LLMOptions returns the model configuration with overrides applied.
func (c *Config) LLMOptions() *llm.Config {
	cfg := llm.DefaultConfig()
	if c.LLM.Model != "" {
		cfg = cfg.WithModel(llm.TierLite, c.LLM.Model)
	}
	if c.LLM.Temperature > 0 {
		cfg.Temperature = c.LLM.Temperature
	}
	return cfg
}

// SearchOptions returns the Google search configuration.
func (c *Config) SearchOptions() search.GoogleConfig {
	return search.GoogleConfig{
		APIKey:          c.Search.APIKey,
		EngineID:        c.Search.EngineID,
		ResultsPerQuery: c.Pipeline.ResultsPerQuery,
	}
}

// LoggerOptions returns the logger options.
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{
		Mode:     c.Logging.Mode,
		Level:    c.Logging.Level,
		Redact:   c.Logging.Redact,
		HashSalt: c.Logging.HashSalt,
	}
}
