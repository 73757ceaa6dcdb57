package core

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TriageService is the core entry point used by every intake
type TriageService struct {
	classifier *RemoteClassifier
	logger     *zap.Logger
}

// NewTriageService creates a new triage service
func NewTriageService(classifier *RemoteClassifier, logger *zap.Logger) *TriageService {
	return &TriageService{
		classifier: classifier,
		logger:     logger,
	}
}

// Classify normalizes raw text and classifies it. The boolean is true when
// there was no text at all and the fallback message should be shown instead;
// the classifier is not invoked in that case.
func (s *TriageService) Classify(ctx context.Context, raw string) (ClassificationResult, bool) {
	text := Normalize(raw)
	if text == "" {
		return ClassificationResult{
			Category:    CategoryUndetermined,
			Reply:       ReplyEmptyInput,
			Source:      SourceNone,
			RuleApplied: RuleEmptyInput,
		}, true
	}

	if ce := s.logger.Check(zap.DebugLevel, "Heuristic signals"); ce != nil {
		courtesy, action := s.classifier.rules.Explain(text)
		ce.Write(zap.String("courtesy", courtesy), zap.String("action", action))
	}

	start := time.Now()
	result := s.classifier.Classify(ctx, text)

	s.logger.Info("Classified email",
		zap.String("category", string(result.Category)),
		zap.String("source", string(result.Source)),
		zap.String("rule", result.RuleApplied),
		zap.Int("chars", utf8.RuneCountInString(text)),
		zap.Duration("duration", time.Since(start)))

	return result, false
}

// Preview returns at most n runes of text, with an ellipsis when cut
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
