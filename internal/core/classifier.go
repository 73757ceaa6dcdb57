package core

import (
	"context"
	"errors"

	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// RemoteClassifier classifies normalized text with the heuristic gate in
// front of a remote completion provider
type RemoteClassifier struct {
	settings      Settings
	rules         *RuleSet
	completer     Completer
	merger        *Merger
	maxBodySize   int
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewRemoteClassifier creates a new remote classifier. completer may be nil
// when no credential is configured; it is never called in that case.
func NewRemoteClassifier(
	settings Settings,
	rules *RuleSet,
	completer Completer,
	maxBodySize int,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *RemoteClassifier {
	if settings.Labels == (LabelSet{}) {
		settings.Labels = DefaultLabels
	}
	return &RemoteClassifier{
		settings:      settings,
		rules:         rules,
		completer:     completer,
		merger:        NewMerger(rules, settings.Labels),
		maxBodySize:   maxBodySize,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Classify never returns an error: every failure is folded into the result
func (c *RemoteClassifier) Classify(ctx context.Context, text string) (result ClassificationResult) {
	if c.settings.Credential == "" {
		c.logger.Warn("Skipping remote classification", zap.Error(ErrMissingCredential),
			zap.String("provider", c.settings.Provider))
		return ClassificationResult{
			Category:    CategoryUndetermined,
			Reply:       ReplyMissingCredential,
			Source:      SourceConfigError,
			RuleApplied: RuleMissingCredential,
			ErrorKind:   ErrorKindConfig,
		}
	}

	verdict := c.rules.IsNonActionableOnly(text)
	if verdict {
		return ClassificationResult{
			Category:    CategoryNonActionable,
			Reply:       ReplyCourtesy,
			Source:      SourceHeuristic,
			RuleApplied: RuleHeuristicCourtesy,
		}
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic during remote classification",
				zap.Any("panic", r),
				zap.Stack("stack"))
			result = providerFailure(ErrorKindUnexpected, "")
		}
	}()

	if c.completer == nil {
		return c.failure(errors.New("no completer configured"))
	}

	body := text
	if c.textProcessor != nil {
		body = c.textProcessor.ProcessText(text, c.maxBodySize)
	}

	raw, err := c.completer.Complete(ctx, BuildCompletionRequest(c.settings.Labels, body))
	if err != nil {
		return c.failure(err)
	}

	resp := ParseModelResponse(raw, c.settings.Labels)
	c.logger.Debug("Parsed model response",
		zap.String("label", resp.Category),
		zap.Int("raw_size", len(raw)))

	return c.merger.Merge(verdict, resp, text)
}

func (c *RemoteClassifier) failure(err error) ClassificationResult {
	kind := KindOf(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("provider", c.settings.Provider),
		zap.String("model", c.settings.Model),
		zap.String("kind", string(kind)),
	}

	switch kind {
	case ErrorKindAuth, ErrorKindRate:
		c.logger.Warn("Provider rejected classification request", fields...)
		return providerFailure(kind, "")
	case ErrorKindAPI:
		c.logger.Warn("Provider API error", fields...)
		var perr *ProviderError
		errors.As(err, &perr)
		return providerFailure(kind, perr.Message)
	default:
		c.logger.Error("Unexpected classification failure", fields...)
		return providerFailure(ErrorKindUnexpected, "")
	}
}

func providerFailure(kind ErrorKind, detail string) ClassificationResult {
	result := ClassificationResult{
		Category:  CategoryUndetermined,
		Source:    SourceProviderError,
		ErrorKind: kind,
	}
	switch kind {
	case ErrorKindAuth:
		result.Reply, result.RuleApplied = ReplyAuthError, RuleProviderAuth
	case ErrorKindRate:
		result.Reply, result.RuleApplied = ReplyRateError, RuleProviderRate
	case ErrorKindAPI:
		result.Reply, result.RuleApplied = apiErrorReply(detail), RuleProviderAPI
	default:
		result.Reply, result.RuleApplied = ReplyUnexpectedError, RuleProviderUnexpected
		result.ErrorKind = ErrorKindUnexpected
	}
	return result
}
