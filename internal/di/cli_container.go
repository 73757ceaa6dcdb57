package di

import (
	"os"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/ports"
)

// CLIFlags contains the command line flags of the CLI application
type CLIFlags struct {
	// Provider flags override the configuration when set
	Provider    string
	Model       string
	APIKey      string
	MaxBodySize int
	RulesFile   string

	// Output flags
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration: file and environment first, then flags
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewWithFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := providePipeline(container); err != nil {
		return nil, err
	}

	// Register CLI filter
	if err := container.Provide(func(triager ports.Triager, logger *zap.Logger, flags *CLIFlags) *filter.CliFilter {
		return filter.NewCliFilter(triager, logger, os.Stdout, flags.Verbose, flags.JSONOutput)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
	}
	provider := v.GetString("llm.provider")

	if flags.Model != "" {
		switch provider {
		case "bedrock":
			v.Set("bedrock.model_id", flags.Model)
		default:
			v.Set(provider+".model_name", flags.Model)
		}
	}
	if flags.APIKey != "" && provider != "bedrock" {
		v.Set(provider+".api_key", flags.APIKey)
	}
	if flags.MaxBodySize > 0 {
		v.Set("llm.max_body_size", flags.MaxBodySize)
	}
	if flags.RulesFile != "" {
		v.Set("heuristic.rules_file", flags.RulesFile)
	}
}
