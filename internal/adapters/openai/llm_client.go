package openai

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mikey/email-triage/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const providerName = "openai"

// OpenAIClient is an implementation of the Completer interface using OpenAI
type OpenAIClient struct {
	client    *openai.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	logger *zap.Logger,
) *OpenAIClient {
	return &OpenAIClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends the two-role instruction to OpenAI and returns the answer text
func (c *OpenAIClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	// temperature is omitempty on the wire; a zero value would fall back to
	// the server default, so send the smallest positive value instead
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("OpenAI returned no choices", zap.String("id", resp.ID))
		return "", nil
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("id", resp.ID),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// classifyError maps go-openai failures onto provider error kinds
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &core.ProviderError{
			Kind:     core.KindForStatus(apiErr.HTTPStatusCode),
			Provider: providerName,
			Status:   apiErr.HTTPStatusCode,
			Message:  apiErr.Message,
			Err:      err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &core.ProviderError{
			Kind:     core.KindForStatus(reqErr.HTTPStatusCode),
			Provider: providerName,
			Status:   reqErr.HTTPStatusCode,
			Message:  reqErr.HTTPStatus,
			Err:      err,
		}
	}

	if core.IsTransportError(err) {
		return &core.ProviderError{
			Kind:     core.ErrorKindAPI,
			Provider: providerName,
			Message:  "connection aborted",
			Err:      err,
		}
	}

	return fmt.Errorf("openai chat completion failed: %w", err)
}
