package core

// Merger reconciles the heuristic verdict with the remote model's answer.
// The heuristic always wins: a courtesy-only text is Non-actionable no matter
// what the model said.
type Merger struct {
	rules  *RuleSet
	labels LabelSet
}

// NewMerger creates a merger sharing the same rule tables as the short-circuit
func NewMerger(rules *RuleSet, labels LabelSet) *Merger {
	return &Merger{rules: rules, labels: labels}
}

// Merge builds the final result. The heuristic is re-evaluated on the
// original text as received, never on anything the model produced.
func (m *Merger) Merge(preVerdict bool, resp ModelResponse, originalText string) ClassificationResult {
	if preVerdict || m.rules.IsNonActionableOnly(originalText) {
		return ClassificationResult{
			Category:    CategoryNonActionable,
			Reply:       ReplyCourtesy,
			Source:      SourceRemoteModel,
			RuleApplied: RuleModelOverride,
		}
	}

	reply := resp.Reply
	if reply == "" {
		reply = ReplyClarification
	}
	return ClassificationResult{
		Category:    m.labels.Category(resp.Category),
		Reply:       reply,
		Source:      SourceRemoteModel,
		RuleApplied: RuleModel,
	}
}
