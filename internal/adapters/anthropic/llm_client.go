package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

const providerName = "anthropic"

// AnthropicClient is an implementation of the Completer interface using Claude models
type AnthropicClient struct {
	client    anthropic.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(client anthropic.Client, modelName string, maxTokens int, logger *zap.Logger) *AnthropicClient {
	return &AnthropicClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Complete sends the instruction as a system prompt plus one user message
func (c *AnthropicClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: int64(c.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
		Temperature: anthropic.Float(float64(req.Temperature)),
	})
	if err != nil {
		return "", classifyError(err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	c.logger.Debug("Anthropic message received",
		zap.String("id", resp.ID),
		zap.String("stop_reason", string(resp.StopReason)))

	return content.String(), nil
}

func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &core.ProviderError{
			Kind:     core.KindForStatus(apiErr.StatusCode),
			Provider: providerName,
			Status:   apiErr.StatusCode,
			Message:  errorMessage(apiErr.RawJSON()),
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

	return fmt.Errorf("anthropic message failed: %w", err)
}

// errorMessage pulls error.message out of an Anthropic error body
func errorMessage(raw string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return ""
	}
	return body.Error.Message
}
