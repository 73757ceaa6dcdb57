package anthropic

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of AnthropicClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for AnthropicClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Settings returns the classifier settings for Anthropic
func (f *Factory) Settings() core.Settings {
	anthropicCfg := f.cfg.GetAnthropic()
	return core.Settings{
		Provider:   providerName,
		Model:      anthropicCfg.ModelName,
		Credential: anthropicCfg.APIKey,
	}
}

// CreateClient creates a new AnthropicClient with SDK retries disabled
func (f *Factory) CreateClient() (core.Completer, error) {
	anthropicCfg := f.cfg.GetAnthropic()

	opts := []option.RequestOption{
		option.WithAPIKey(anthropicCfg.APIKey),
		option.WithMaxRetries(0),
	}
	if anthropicCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(anthropicCfg.BaseURL))
	}

	return NewAnthropicClient(
		anthropic.NewClient(opts...),
		anthropicCfg.ModelName,
		anthropicCfg.MaxTokens,
		f.logger,
	), nil
}
