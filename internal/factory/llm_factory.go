package factory

import (
	"fmt"
	"strings"

	"github.com/mikey/email-triage/internal/adapters/anthropic"
	"github.com/mikey/email-triage/internal/adapters/bedrock"
	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// providerFactory is implemented by every provider adapter factory
type providerFactory interface {
	Settings() core.Settings
	CreateClient() (core.Completer, error)
}

// LLMFactory selects the configured provider and builds its client
type LLMFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider providerFactory
}

// NewLLMFactory creates a new LLM factory for the configured provider
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) (*LLMFactory, error) {
	var provider providerFactory

	switch name := strings.ToLower(cfg.GetLLM().Provider); name {
	case "openai", "":
		provider = openai.NewFactory(cfg, logger)
	case "anthropic":
		provider = anthropic.NewFactory(cfg, logger)
	case "gemini":
		provider = gemini.NewFactory(cfg, logger)
	case "bedrock":
		provider = bedrock.NewFactory(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}

	return &LLMFactory{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
	}, nil
}

// Settings returns the immutable classifier settings
func (f *LLMFactory) Settings() core.Settings {
	settings := f.provider.Settings()

	llmCfg := f.cfg.GetLLM()
	settings.Labels = core.LabelSet{
		Actionable:    llmCfg.ActionableLabel,
		NonActionable: llmCfg.NonActionableLabel,
	}
	if settings.Labels.Actionable == "" || settings.Labels.NonActionable == "" {
		settings.Labels = core.DefaultLabels
	}
	return settings
}

// CreateCompleter creates the provider client. It returns a nil Completer
// without error when no credential is configured.
func (f *LLMFactory) CreateCompleter(settings core.Settings) (core.Completer, error) {
	if settings.Credential == "" {
		f.logger.Warn("No provider credential configured, remote classification disabled",
			zap.String("provider", settings.Provider))
		return nil, nil
	}

	client, err := f.provider.CreateClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", settings.Provider, err)
	}

	f.logger.Info("Remote classifier ready",
		zap.String("provider", settings.Provider),
		zap.String("model", settings.Model))
	return client, nil
}
