package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Twitter TwitterConfig `yaml:"twitter"`
	Thread  ThreadConfig  `yaml:"thread"`
	Redis   RedisConfig   `yaml:"redis"`
	History HistoryConfig `yaml:"history"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

// TwitterConfig holds upstream API configuration.
type TwitterConfig struct {
	BearerTokens []string      `yaml:"bearer_tokens" envconfig:"TWITTER_BEARER_TOKENS"`
	BaseURL      string        `yaml:"base_url" envconfig:"TWITTER_BASE_URL"`
	Timeout      time.Duration `yaml:"timeout" envconfig:"TWITTER_TIMEOUT"`
	UserAgent    string        `yaml:"user_agent" envconfig:"TWITTER_USER_AGENT"`

	// Single-token variables kept for older deployments.
	LegacyToken  string `yaml:"-" envconfig:"TWITTER_BEARER_TOKEN"`
	LegacyToken2 string `yaml:"-" envconfig:"TWITTER_BEARER_TOKEN2"`
}

// ThreadConfig holds thread reconstruction configuration.
type ThreadConfig struct {
	Enabled    bool          `yaml:"enabled" envconfig:"THREAD_ENABLED"`
	TTL        time.Duration `yaml:"ttl" envconfig:"THREAD_TTL"`
	MaxResults int           `yaml:"max_results" envconfig:"THREAD_MAX_RESULTS"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"THREAD_TIMEOUT"`
}

// RedisConfig holds thread cache connection configuration.
type RedisConfig struct {
	Addr        string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password    string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" envconfig:"REDIS_DB"`
	DialTimeout time.Duration `yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT"`
}

// HistoryConfig holds resolution history configuration. An empty path
// disables history.
type HistoryConfig struct {
	Path string `yaml:"path" envconfig:"HISTORY_PATH"`
}

// Default returns the configuration used before file and environment
// overrides are applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9848,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Twitter: TwitterConfig{
			BaseURL:   "https://api.twitter.com/2",
			Timeout:   15 * time.Second,
			UserAgent: "xresolve/1.0",
		},
		Thread: ThreadConfig{
			Enabled:    true,
			TTL:        24 * time.Hour,
			MaxResults: 100,
			Timeout:    10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			DialTimeout: 5 * time.Second,
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
// Blank string and list variables are ignored; blank numeric, boolean or
// duration variables are rejected by the parser.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	fromFile := *cfg
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	keepBlank(reflect.ValueOf(cfg).Elem(), reflect.ValueOf(&fromFile).Elem())

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// keepBlank restores fields whose environment variable is set but blank, so
// an exported empty variable does not wipe a value from the file or defaults.
func keepBlank(dst, src reflect.Value) {
	t := dst.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Struct {
			keepBlank(dst.Field(i), src.Field(i))
			continue
		}
		key := f.Tag.Get("envconfig")
		if key == "" {
			continue
		}
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if len(c.Twitter.Tokens()) == 0 {
		return fmt.Errorf("TWITTER_BEARER_TOKENS is required")
	}
	if c.Thread.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required when thread support is enabled")
		}
		if c.Thread.MaxResults < 10 || c.Thread.MaxResults > 100 {
			return fmt.Errorf("THREAD_MAX_RESULTS must be between 10 and 100")
		}
		if c.Thread.TTL <= 0 {
			return fmt.Errorf("THREAD_TTL must be positive")
		}
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

// Tokens returns the configured bearer tokens, legacy variables included,
// without blanks or duplicates.
func (c *TwitterConfig) Tokens() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range append(append([]string{}, c.BearerTokens...), c.LegacyToken, c.LegacyToken2) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
