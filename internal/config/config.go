package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     StoreConfig     `mapstructure:"store"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// ProvidersConfig holds the vendor credentials. Read once at startup and
// injected into the adapters; never mutated afterwards.
type ProvidersConfig struct {
	OpenAIKey        string `mapstructure:"openai_api_key"`
	OpenAIBaseURL    string `mapstructure:"openai_base_url"`
	AnthropicKey     string `mapstructure:"anthropic_api_key"`
	AnthropicBaseURL string `mapstructure:"anthropic_base_url"`
	AnthropicVersion string `mapstructure:"anthropic_version"`
}

// IdentityConfig points at the session-verification collaborator.
type IdentityConfig struct {
	URL      string        `mapstructure:"identity_url"`
	AnonKey  string        `mapstructure:"identity_anon_key"`
	CacheTTL time.Duration `mapstructure:"identity_cache_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type StoreConfig struct {
	DSN     string `mapstructure:"dsn"`
	Enabled bool   `mapstructure:"enabled"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("providers.openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("providers.anthropic_base_url", "https://api.anthropic.com/v1")
	v.SetDefault("providers.anthropic_version", "2023-06-01")
	v.SetDefault("identity.identity_cache_ttl", 5*time.Minute)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("store.dsn", "file:llm-api.db?_journal_mode=WAL&_busy_timeout=5000")
	v.SetDefault("store.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("tracing.enabled", false)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are env-only and have no file equivalent, so bind them
	// explicitly for AutomaticEnv to pick up.
	_ = v.BindEnv("providers.openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("providers.anthropic_api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("identity.identity_url", "IDENTITY_URL")
	_ = v.BindEnv("identity.identity_anon_key", "IDENTITY_ANON_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &cfg, nil
}
