package core

// Category is the final business category of an email
type Category string

const (
	CategoryActionable    Category = "Actionable"
	CategoryNonActionable Category = "Non-actionable"
	CategoryUndetermined  Category = "Undetermined"
)

// Source identifies the subsystem that produced the final category
type Source string

const (
	SourceHeuristic     Source = "heuristic"
	SourceRemoteModel   Source = "remote-model"
	SourceConfigError   Source = "config-error"
	SourceProviderError Source = "provider-error"
	SourceNone          Source = "none"
)

// Rule tags recorded in ClassificationResult.RuleApplied
const (
	RuleHeuristicCourtesy  = "heuristic:courtesy-only"
	RuleModel              = "model"
	RuleModelOverride      = "model+override:courtesy-only"
	RuleMissingCredential  = "config:missing-credential"
	RuleEmptyInput         = "input:empty"
	RuleProviderAuth       = "provider:auth-error"
	RuleProviderRate       = "provider:rate-error"
	RuleProviderAPI        = "provider:api-error"
	RuleProviderUnexpected = "provider:unexpected-error"
)

// LabelUndetermined is what an unparseable or unknown model label collapses to
const LabelUndetermined = "Undetermined"

// LabelSet holds the two labels the remote model is allowed to answer with
type LabelSet struct {
	Actionable    string
	NonActionable string
}

// DefaultLabels are the labels used in the prompt contract
var DefaultLabels = LabelSet{
	Actionable:    "Produtivo",
	NonActionable: "Improdutivo",
}

// Valid reports whether label is exactly one of the two model labels
func (l LabelSet) Valid(label string) bool {
	return label == l.Actionable || label == l.NonActionable
}

// Category maps a model label onto a final category
func (l LabelSet) Category(label string) Category {
	switch label {
	case l.Actionable:
		return CategoryActionable
	case l.NonActionable:
		return CategoryNonActionable
	default:
		return CategoryUndetermined
	}
}

// ModelResponse is the normalized answer of the remote model
type ModelResponse struct {
	Category string `json:"category"`
	Reply    string `json:"reply"`
}

// ClassificationResult is the final output of the triage pipeline
type ClassificationResult struct {
	Category    Category  `json:"category"`
	Reply       string    `json:"reply"`
	Source      Source    `json:"source"`
	RuleApplied string    `json:"rule_applied"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
}

// Failed reports whether the result was produced by a failure path
func (r ClassificationResult) Failed() bool {
	return r.ErrorKind != ErrorKindNone
}

// Settings is the immutable process-wide configuration of the classifier
type Settings struct {
	Provider   string
	Model      string
	Credential string
	Labels     LabelSet
}
