package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"category": "Produtivo", `),
				genai.Blob{MIMEType: "image/png"},
				genai.Text(`"reply": "ok"}`),
			}}},
		},
	}
	assert.Equal(t, `{"category": "Produtivo", "reply": "ok"}`, responseText(resp))

	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   core.ErrorKind
		status int
	}{
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "bad key"), core.ErrorKindAuth, http.StatusUnauthorized},
		{"grpc permission denied", status.Error(codes.PermissionDenied, "no"), core.ErrorKindAPI, http.StatusForbidden},
		{"grpc quota", status.Error(codes.ResourceExhausted, "quota"), core.ErrorKindRate, http.StatusTooManyRequests},
		{"grpc internal", status.Error(codes.Internal, "boom"), core.ErrorKindAPI, http.StatusInternalServerError},
		{"rest forbidden", &googleapi.Error{Code: http.StatusForbidden, Message: "permission denied"}, core.ErrorKindAPI, http.StatusForbidden},
		{"rest rate", &googleapi.Error{Code: http.StatusTooManyRequests}, core.ErrorKindRate, http.StatusTooManyRequests},
		{"wrapped rest", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusBadRequest}), core.ErrorKindAPI, http.StatusBadRequest},
		{"deadline", context.DeadlineExceeded, core.ErrorKindAPI, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyError(tt.err)
			var perr *core.ProviderError
			if assert.ErrorAs(t, err, &perr) {
				assert.Equal(t, tt.kind, perr.Kind)
				assert.Equal(t, tt.status, perr.Status)
				assert.Equal(t, "gemini", perr.Provider)
			}
		})
	}
}

func TestClassifyErrorUnknown(t *testing.T) {
	err := classifyError(errors.New("weird"))
	assert.Equal(t, core.ErrorKindUnexpected, core.KindOf(err))
}

func TestSettings(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("gemini.api_key", "g-key")
	v.Set("gemini.model_name", "gemini-test")

	settings := NewFactory(config.NewFromViper(v), zaptest.NewLogger(t)).Settings()
	assert.Equal(t, "gemini", settings.Provider)
	assert.Equal(t, "gemini-test", settings.Model)
	assert.Equal(t, "g-key", settings.Credential)
}
