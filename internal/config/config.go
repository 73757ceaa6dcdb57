package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewWithFile("")
}

// NewWithFile creates a configuration instance reading an explicit config
// file. An empty path searches the default locations.
func NewWithFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/email-triage/")
		v.AddConfigPath("$HOME/.email-triage")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Set defaults
	setDefaults(v)

	// Environment variables
	bindEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults and environment bindings
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("EMAIL_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known provider variables are honoured without the prefix
	_ = v.BindEnv("openai.api_key", "EMAIL_TRIAGE_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model_name", "EMAIL_TRIAGE_OPENAI_MODEL_NAME", "OPENAI_MODEL")
	_ = v.BindEnv("openai.base_url", "EMAIL_TRIAGE_OPENAI_BASE_URL", "OPENAI_BASE_URL")
	_ = v.BindEnv("anthropic.api_key", "EMAIL_TRIAGE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("gemini.api_key", "EMAIL_TRIAGE_GEMINI_API_KEY", "GEMINI_API_KEY")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_body_size", 0)
	v.SetDefault("llm.labels.actionable", "Produtivo")
	v.SetDefault("llm.labels.non_actionable", "Improdutivo")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.max_tokens", 512)

	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model_name", "claude-3-5-haiku-latest")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.max_tokens", 512)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 512)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 512)

	// Heuristic defaults
	v.SetDefault("heuristic.rules_file", "")

	// HTTP intake defaults
	v.SetDefault("server.http.enabled", true)
	v.SetDefault("server.http.listen_address", "0.0.0.0:8000")
	v.SetDefault("server.http.static_dir", "")
	v.SetDefault("server.http.max_upload_bytes", 10*1024*1024)
	v.SetDefault("server.http.request_timeout", "30s")
	v.SetDefault("server.http.preview_chars", 600)

	// SMTP intake defaults
	v.SetDefault("server.smtp.enabled", false)
	v.SetDefault("server.smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.smtp.domain", "localhost")
	v.SetDefault("server.smtp.classify_timeout", "15s")
	v.SetDefault("server.smtp.relay.enabled", false)
	v.SetDefault("server.smtp.relay.address", "127.0.0.1")
	v.SetDefault("server.smtp.relay.port", 10026)
	v.SetDefault("server.smtp.headers.category", "X-Email-Triage-Category")
	v.SetDefault("server.smtp.headers.source", "X-Email-Triage-Source")
	v.SetDefault("server.smtp.headers.rule", "X-Email-Triage-Rule")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
