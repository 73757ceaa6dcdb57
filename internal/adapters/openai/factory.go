package openai

import (
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Settings returns the classifier settings for OpenAI
func (f *Factory) Settings() core.Settings {
	openaiCfg := f.cfg.GetOpenAI()
	return core.Settings{
		Provider:   providerName,
		Model:      openaiCfg.ModelName,
		Credential: openaiCfg.APIKey,
	}
}

// CreateClient creates a new OpenAIClient
func (f *Factory) CreateClient() (core.Completer, error) {
	openaiCfg := f.cfg.GetOpenAI()

	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}

	return NewOpenAIClient(
		openai.NewClientWithConfig(clientCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		f.logger,
	), nil
}
