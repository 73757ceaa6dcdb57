package core

import (
	"context"
)

// CompletionRequest is a single two-role instruction sent to a completion provider
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
}

// Completer defines the interface for interacting with LLM services
type Completer interface {
	// Complete performs one round-trip and returns the raw text of the answer.
	// Provider failures are reported as *ProviderError.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// TextExtractor turns an uploaded document into plain text
type TextExtractor interface {
	// Extract never fails; it returns "" when nothing could be recovered
	Extract(data []byte, filename string) string
}
