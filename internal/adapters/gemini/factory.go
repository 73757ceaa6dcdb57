package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Settings returns the classifier settings for Gemini
func (f *Factory) Settings() core.Settings {
	geminiCfg := f.cfg.GetGemini()
	return core.Settings{
		Provider:   providerName,
		Model:      geminiCfg.ModelName,
		Credential: geminiCfg.APIKey,
	}
}

// CreateClient creates a new GeminiClient
func (f *Factory) CreateClient() (core.Completer, error) {
	geminiCfg := f.cfg.GetGemini()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(geminiCfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewGeminiClient(client, geminiCfg.ModelName, geminiCfg.MaxTokens, f.logger), nil
}
