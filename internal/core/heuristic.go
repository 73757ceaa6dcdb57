package core

import (
	"fmt"
	"regexp"
	"strings"
)

// Unicode-aware word boundaries; RE2's \b only knows ASCII word characters.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// RuleGroup is the uncompiled form of a named set of patterns
type RuleGroup struct {
	Name string
	// Terms are regex fragments that must match as whole words
	Terms []string
	// Patterns are raw regexes matched anywhere in the text
	Patterns []string
}

type compiledGroup struct {
	name string
	re   *regexp.Regexp
}

// RuleSet holds the compiled courtesy and actionable tables. It is never
// mutated after construction and is safe for concurrent use.
type RuleSet struct {
	courtesy   []compiledGroup
	actionable []compiledGroup
}

// NewRuleSet compiles the courtesy and actionable groups in order
func NewRuleSet(courtesy, actionable []RuleGroup) (*RuleSet, error) {
	c, err := compileGroups(courtesy)
	if err != nil {
		return nil, fmt.Errorf("failed to compile courtesy rules: %w", err)
	}
	a, err := compileGroups(actionable)
	if err != nil {
		return nil, fmt.Errorf("failed to compile actionable rules: %w", err)
	}
	return &RuleSet{courtesy: c, actionable: a}, nil
}

func compileGroups(groups []RuleGroup) ([]compiledGroup, error) {
	compiled := make([]compiledGroup, 0, len(groups))
	for _, g := range groups {
		var alts []string
		if len(g.Terms) > 0 {
			alts = append(alts, wordStart+`(?:`+strings.Join(g.Terms, "|")+`)`+wordEnd)
		}
		for _, p := range g.Patterns {
			alts = append(alts, `(?:`+p+`)`)
		}
		if len(alts) == 0 {
			return nil, fmt.Errorf("rule group %q has no terms or patterns", g.Name)
		}
		re, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
		if err != nil {
			return nil, fmt.Errorf("rule group %q: %w", g.Name, err)
		}
		compiled = append(compiled, compiledGroup{name: g.Name, re: re})
	}
	return compiled, nil
}

// IsNonActionableOnly reports whether text carries a courtesy signal and no
// actionable signal (request, question, ticket, deadline...). A question mark
// always counts as actionable. Empty text is never courtesy-only.
func (r *RuleSet) IsNonActionableOnly(text string) bool {
	if text == "" {
		return false
	}
	t := strings.ToLower(text)
	return firstMatch(r.courtesy, t) != "" && !hasAction(r.actionable, t)
}

// Explain returns the names of the first courtesy and actionable groups that
// match text. A bare question mark is reported as "question-mark".
func (r *RuleSet) Explain(text string) (courtesy, action string) {
	t := strings.ToLower(text)
	courtesy = firstMatch(r.courtesy, t)
	action = firstMatch(r.actionable, t)
	if action == "" && strings.Contains(t, "?") {
		action = "question-mark"
	}
	return courtesy, action
}

func hasAction(groups []compiledGroup, t string) bool {
	return strings.Contains(t, "?") || firstMatch(groups, t) != ""
}

func firstMatch(groups []compiledGroup, t string) string {
	for _, g := range groups {
		if g.re.MatchString(t) {
			return g.name
		}
	}
	return ""
}
