package config

import (
	"time"
)

// LLMConfig represents the provider-independent classifier configuration
type LLMConfig struct {
	Provider           string
	MaxBodySize        int
	ActionableLabel    string
	NonActionableLabel string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey    string
	ModelName string
	BaseURL   string
	MaxTokens int
}

// AnthropicConfig represents the configuration for Anthropic
type AnthropicConfig struct {
	APIKey    string
	ModelName string
	BaseURL   string
	MaxTokens int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey    string
	ModelName string
	MaxTokens int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region    string
	ModelID   string
	MaxTokens int
}

// HeuristicConfig represents the configuration of the rule engine
type HeuristicConfig struct {
	RulesFile string
}

// HTTPConfig represents the configuration of the HTTP intake
type HTTPConfig struct {
	Enabled        bool
	ListenAddress  string
	StaticDir      string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	PreviewChars   int
}

// SMTPConfig represents the configuration of the SMTP intake
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	ClassifyTimeout time.Duration
	RelayEnabled    bool
	RelayAddress    string
	RelayPort       int
	CategoryHeader  string
	SourceHeader    string
	RuleHeader      string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:           c.GetString("llm.provider"),
		MaxBodySize:        c.GetInt("llm.max_body_size"),
		ActionableLabel:    c.GetString("llm.labels.actionable"),
		NonActionableLabel: c.GetString("llm.labels.non_actionable"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:    c.GetString("openai.api_key"),
		ModelName: c.GetString("openai.model_name"),
		BaseURL:   c.GetString("openai.base_url"),
		MaxTokens: c.GetInt("openai.max_tokens"),
	}
}

// GetAnthropic returns the Anthropic configuration
func (c *Config) GetAnthropic() AnthropicConfig {
	return AnthropicConfig{
		APIKey:    c.GetString("anthropic.api_key"),
		ModelName: c.GetString("anthropic.model_name"),
		BaseURL:   c.GetString("anthropic.base_url"),
		MaxTokens: c.GetInt("anthropic.max_tokens"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:    c.GetString("gemini.api_key"),
		ModelName: c.GetString("gemini.model_name"),
		MaxTokens: c.GetInt("gemini.max_tokens"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:    c.GetString("bedrock.region"),
		ModelID:   c.GetString("bedrock.model_id"),
		MaxTokens: c.GetInt("bedrock.max_tokens"),
	}
}

// GetHeuristic returns the rule engine configuration
func (c *Config) GetHeuristic() HeuristicConfig {
	return HeuristicConfig{
		RulesFile: c.GetString("heuristic.rules_file"),
	}
}

// GetHTTP returns the HTTP intake configuration
func (c *Config) GetHTTP() (HTTPConfig, error) {
	timeout, err := c.GetDuration("server.http.request_timeout")
	if err != nil {
		return HTTPConfig{}, err
	}
	return HTTPConfig{
		Enabled:        c.GetBool("server.http.enabled"),
		ListenAddress:  c.GetString("server.http.listen_address"),
		StaticDir:      c.GetString("server.http.static_dir"),
		MaxUploadBytes: c.GetInt64("server.http.max_upload_bytes"),
		RequestTimeout: timeout,
		PreviewChars:   c.GetInt("server.http.preview_chars"),
	}, nil
}

// GetSMTP returns the SMTP intake configuration
func (c *Config) GetSMTP() (SMTPConfig, error) {
	timeout, err := c.GetDuration("server.smtp.classify_timeout")
	if err != nil {
		return SMTPConfig{}, err
	}
	return SMTPConfig{
		Enabled:         c.GetBool("server.smtp.enabled"),
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		Domain:          c.GetString("server.smtp.domain"),
		ClassifyTimeout: timeout,
		RelayEnabled:    c.GetBool("server.smtp.relay.enabled"),
		RelayAddress:    c.GetString("server.smtp.relay.address"),
		RelayPort:       c.GetInt("server.smtp.relay.port"),
		CategoryHeader:  c.GetString("server.smtp.headers.category"),
		SourceHeader:    c.GetString("server.smtp.headers.source"),
		RuleHeader:      c.GetString("server.smtp.headers.rule"),
	}, nil
}
