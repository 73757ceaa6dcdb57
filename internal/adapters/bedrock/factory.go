package bedrock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// Factory creates Bedrock clients
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger

	once   sync.Once
	awsCfg aws.Config
	err    error
}

// NewFactory creates a new Bedrock factory
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

func (f *Factory) loadAWSConfig() (aws.Config, error) {
	f.once.Do(func() {
		f.awsCfg, f.err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(f.cfg.GetBedrock().Region))
	})
	return f.awsCfg, f.err
}

// Settings returns the classifier settings for Bedrock. The credential is
// the access key id resolved through the default AWS chain.
func (f *Factory) Settings() core.Settings {
	settings := core.Settings{
		Provider: providerName,
		Model:    f.cfg.GetBedrock().ModelID,
	}

	awsCfg, err := f.loadAWSConfig()
	if err != nil {
		f.logger.Warn("Failed to load AWS configuration", zap.Error(err))
		return settings
	}
	if awsCfg.Credentials == nil {
		return settings
	}

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		f.logger.Warn("No AWS credentials resolved", zap.Error(err))
		return settings
	}
	settings.Credential = creds.AccessKeyID
	return settings
}

// CreateClient creates a new Bedrock client with SDK retries disabled
func (f *Factory) CreateClient() (core.Completer, error) {
	awsCfg, err := f.loadAWSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg, func(o *bedrockruntime.Options) {
		o.RetryMaxAttempts = 1
	})

	bedrockCfg := f.cfg.GetBedrock()
	return NewBedrockClient(client, bedrockCfg.ModelID, bedrockCfg.MaxTokens, f.logger), nil
}
