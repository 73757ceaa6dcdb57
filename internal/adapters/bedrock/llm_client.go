package bedrock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

const providerName = "bedrock"

// ConverseAPI is the slice of the Bedrock runtime client used here
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient is an implementation of the Completer interface using Amazon Bedrock
type BedrockClient struct {
	client    ConverseAPI
	modelID   string
	maxTokens int
	logger    *zap.Logger
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(client ConverseAPI, modelID string, maxTokens int, logger *zap.Logger) *BedrockClient {
	return &BedrockClient{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends the instruction through the model-agnostic Converse API
func (c *BedrockClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	out, err := c.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		System: []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: req.System},
		},
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: req.User},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(c.maxTokens)),
			Temperature: aws.Float32(req.Temperature),
		},
	})
	if err != nil {
		return "", classifyError(err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		c.logger.Warn("Bedrock returned no message", zap.String("stop_reason", string(out.StopReason)))
		return "", nil
	}

	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(text.Value)
		}
	}

	c.logger.Debug("Bedrock conversation completed",
		zap.String("model_id", c.modelID),
		zap.String("stop_reason", string(out.StopReason)))

	return sb.String(), nil
}

// credentialErrorCodes are the STS/SigV4 codes AWS sends with a 403 when the
// key itself is bad rather than merely lacking permission
var credentialErrorCodes = map[string]bool{
	"UnrecognizedClientException": true,
	"InvalidSignatureException":   true,
	"ExpiredTokenException":       true,
}

func classifyError(err error) error {
	status := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	var (
		accessDenied *types.AccessDeniedException
		throttling   *types.ThrottlingException
		quota        *types.ServiceQuotaExceededException
	)
	switch {
	case errors.As(err, &accessDenied):
		return providerError(core.ErrorKindAPI, orStatus(status, http.StatusForbidden), accessDenied.ErrorMessage(), err)
	case errors.As(err, &throttling):
		return providerError(core.ErrorKindRate, orStatus(status, http.StatusTooManyRequests), throttling.ErrorMessage(), err)
	case errors.As(err, &quota):
		return providerError(core.ErrorKindRate, orStatus(status, http.StatusTooManyRequests), quota.ErrorMessage(), err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind := core.ErrorKindAPI
		if status > 0 {
			kind = core.KindForStatus(status)
		}
		if credentialErrorCodes[apiErr.ErrorCode()] {
			kind = core.ErrorKindAuth
		}
		return providerError(kind, status, apiErr.ErrorMessage(), err)
	}

	if core.IsTransportError(err) {
		return providerError(core.ErrorKindAPI, status, "connection aborted", err)
	}

	return fmt.Errorf("bedrock converse failed: %w", err)
}

func providerError(kind core.ErrorKind, status int, message string, err error) *core.ProviderError {
	return &core.ProviderError{
		Kind:     kind,
		Provider: providerName,
		Status:   status,
		Message:  message,
		Err:      err,
	}
}

func orStatus(status, fallback int) int {
	if status > 0 {
		return status
	}
	return fallback
}
