package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/extract"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/rules"
	"github.com/mikey/email-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	return BuildContainerWithConfig(config.New)
}

// BuildContainerWithConfig builds the server container around a config constructor
func BuildContainerWithConfig(newConfig func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(newConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register intakes
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FilterFactory) ([]ports.EmailFilter, error) {
		return f.CreateEmailFilters()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// providePipeline registers everything between the configuration and the
// intakes. It expects *config.Config and *zap.Logger to be provided already.
func providePipeline(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register settings, read once at start-up
	if err := container.Provide(func(f *factory.LLMFactory) core.Settings {
		return f.Settings()
	}); err != nil {
		return err
	}

	// Register completer; nil when no credential is configured
	if err := container.Provide(func(f *factory.LLMFactory, settings core.Settings) (core.Completer, error) {
		return f.CreateCompleter(settings)
	}); err != nil {
		return err
	}

	// Register rule set
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*core.RuleSet, error) {
		path := cfg.GetHeuristic().RulesFile
		ruleSet, err := rules.Load(path)
		if err != nil {
			return nil, err
		}
		if path != "" {
			logger.Info("Loaded heuristic rules", zap.String("file", path))
		}
		return ruleSet, nil
	}); err != nil {
		return err
	}

	// Register classifier and service
	if err := container.Provide(func(
		cfg *config.Config,
		settings core.Settings,
		ruleSet *core.RuleSet,
		completer core.Completer,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
	) *core.RemoteClassifier {
		return core.NewRemoteClassifier(
			settings,
			ruleSet,
			completer,
			cfg.GetLLM().MaxBodySize,
			textProcessor,
			logger.Named("classifier"),
		)
	}); err != nil {
		return err
	}
	if err := container.Provide(core.NewTriageService); err != nil {
		return err
	}
	if err := container.Provide(func(s *core.TriageService) ports.Triager {
		return s
	}); err != nil {
		return err
	}

	// Register document extractor
	if err := container.Provide(func(logger *zap.Logger) core.TextExtractor {
		return extract.NewExtractor(logger)
	}); err != nil {
		return err
	}

	return nil
}
