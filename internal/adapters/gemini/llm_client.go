package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const providerName = "gemini"

// GeminiClient is an implementation of the Completer interface using Google Gemini
type GeminiClient struct {
	client    *genai.Client
	modelName string
	maxTokens int
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(client *genai.Client, modelName string, maxTokens int, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete sends the instruction as a system instruction plus one user turn
func (c *GeminiClient) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	// GenerativeModel carries per-call settings, so build one per request
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(req.Temperature)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.System)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			c.logger.Warn("Gemini blocked the request", zap.Error(err))
			return "", nil
		}
		return "", classifyError(err)
	}

	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func classifyError(err error) error {
	if core.IsTransportError(err) {
		return &core.ProviderError{
			Kind:     core.ErrorKindAPI,
			Provider: providerName,
			Message:  "connection aborted",
			Err:      err,
		}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &core.ProviderError{
			Kind:     core.KindForStatus(gerr.Code),
			Provider: providerName,
			Status:   gerr.Code,
			Message:  gerr.Message,
			Err:      err,
		}
	}

	if st, ok := status.FromError(err); ok {
		code := statusForCode(st.Code())
		return &core.ProviderError{
			Kind:     core.KindForStatus(code),
			Provider: providerName,
			Status:   code,
			Message:  st.Message(),
			Err:      err,
		}
	}

	return fmt.Errorf("gemini generate content failed: %w", err)
}

// statusForCode maps gRPC codes onto the HTTP status the REST surface would return
func statusForCode(code codes.Code) int {
	switch code {
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.InvalidArgument, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
