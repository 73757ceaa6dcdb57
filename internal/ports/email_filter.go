package ports

import (
	"context"

	"github.com/mikey/email-triage/internal/core"
)

// Triager classifies raw email text
type Triager interface {
	// Classify returns the result and whether the input was empty
	Classify(ctx context.Context, raw string) (core.ClassificationResult, bool)
}

// EmailFilter is an intake that feeds mail into the triage pipeline
type EmailFilter interface {
	// Start starts the intake service
	Start() error

	// Stop stops the intake service
	Stop() error
}
