package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

// CliFilter runs the triage pipeline for the command line and prints the result
type CliFilter struct {
	triager    ports.Triager
	logger     *zap.Logger
	out        io.Writer
	verbose    bool
	jsonOutput bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(triager ports.Triager, logger *zap.Logger, out io.Writer, verbose, jsonOutput bool) *CliFilter {
	return &CliFilter{
		triager:    triager,
		logger:     logger,
		out:        out,
		verbose:    verbose,
		jsonOutput: jsonOutput,
	}
}

// ProcessText classifies raw text and writes the result to the output
func (f *CliFilter) ProcessText(ctx context.Context, raw string) (core.ClassificationResult, error) {
	text := core.Normalize(raw)
	f.logger.Debug("Processing text", zap.Int("chars", utf8.RuneCountInString(text)))

	start := time.Now()
	result, empty := f.triager.Classify(ctx, raw)
	duration := time.Since(start)

	if f.jsonOutput {
		resp := ProcessResponse{
			Category:    result.Category,
			Reply:       result.Reply,
			Source:      result.Source,
			RuleApplied: result.RuleApplied,
			ErrorKind:   result.ErrorKind,
		}
		if !empty {
			resp.Chars = utf8.RuneCountInString(text)
			resp.Preview = core.Preview(text, 600)
		}
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return result, fmt.Errorf("failed to write result: %w", err)
		}
		return result, nil
	}

	fmt.Fprintf(f.out, "=== Input ===\n")
	fmt.Fprintf(f.out, "Characters: %d\n", utf8.RuneCountInString(text))
	if f.verbose && !empty {
		fmt.Fprintf(f.out, "Preview: %s\n", core.Preview(text, 500))
	}

	fmt.Fprintf(f.out, "\n=== Result ===\n")
	fmt.Fprintf(f.out, "Category: %s\n", result.Category)
	fmt.Fprintf(f.out, "Reply: %s\n", result.Reply)
	fmt.Fprintf(f.out, "Source: %s\n", result.Source)
	fmt.Fprintf(f.out, "Rule applied: %s\n", result.RuleApplied)
	if result.ErrorKind != core.ErrorKindNone {
		fmt.Fprintf(f.out, "Error kind: %s\n", result.ErrorKind)
	}
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
