// Package rules implements the intent rule engine for chat comments.
//
// A rule table is an ordered list of rules, each mapping match conditions
// (keywords, regex patterns, a repeated-character heuristic) to an intent
// label and priority. Evaluation order is the configured order; a matched
// "high" priority is never downgraded by later rules.
package rules

import (
	"fmt"
	"regexp"

	"github.com/danvo/liveinsight/internal/model"
)

// Rule is one entry of the intent decision table. Loaded once at session
// start and immutable afterwards.
type Rule struct {
	Intent        string         `json:"intent"`
	Priority      model.Priority `json:"priority"`
	Keywords      []string       `json:"keywords,omitempty"`
	Patterns      []string       `json:"patterns,omitempty"`
	RepeatedChars bool           `json:"repeated_chars,omitempty"`
	Responses     []string       `json:"responses,omitempty"` // canned replies for the responder

	compiled []*regexp.Regexp
}

// Result is the outcome of classifying one comment.
type Result struct {
	Intent   string
	Priority model.Priority
	Matches  []string // every intent that matched, in rule order
}

// DefaultResult is returned for empty text or when no rule matches.
func DefaultResult() Result {
	return Result{Intent: "general", Priority: model.PriorityLow}
}

// Classifier evaluates a fixed rule table against comment text.
// Purely functional after construction; safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier compiles the rule table. Rules keep their given order.
// A rule with no usable condition (no keywords, no valid patterns, repeated
// chars disabled) is rejected; an invalid priority is rejected.
func NewClassifier(table []Rule) (*Classifier, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("rules: empty rule table")
	}

	compiled := make([]Rule, len(table))
	copy(compiled, table)

	for i := range compiled {
		r := &compiled[i]
		if r.Intent == "" {
			return nil, fmt.Errorf("rules: rule %d has no intent", i)
		}
		switch r.Priority {
		case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
		default:
			return nil, fmt.Errorf("rules: rule %q has invalid priority %q", r.Intent, r.Priority)
		}

		var skipped int
		r.compiled, skipped = CompilePatterns(r.Patterns)
		if skipped > 0 && len(r.compiled) == 0 && len(r.Keywords) == 0 && !r.RepeatedChars {
			return nil, fmt.Errorf("rules: rule %q has only invalid patterns", r.Intent)
		}
		if len(r.Keywords) == 0 && len(r.compiled) == 0 && !r.RepeatedChars {
			return nil, fmt.Errorf("rules: rule %q has no match condition", r.Intent)
		}
	}

	return &Classifier{rules: compiled}, nil
}

// Rules returns the compiled rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Responses returns the canned replies configured for an intent, if any.
func (c *Classifier) Responses(intent string) []string {
	for i := range c.rules {
		if c.rules[i].Intent == intent {
			return c.rules[i].Responses
		}
	}
	return nil
}

// Classify maps text to an intent and priority. Total over all input:
// empty text yields the default result. Each matching rule overwrites the
// held intent and priority unless the held priority is already high and the
// rule's is not; all matched intents are recorded regardless.
func (c *Classifier) Classify(text string) Result {
	result := DefaultResult()
	if text == "" {
		return result
	}

	for i := range c.rules {
		r := &c.rules[i]

		matched := MatchKeywords(text, r.Keywords)
		if !matched && len(r.compiled) > 0 {
			matched = MatchPatterns(text, r.compiled)
		}
		if !matched && r.RepeatedChars {
			matched = HasRepeatedChars(text, DefaultRepeatThreshold)
		}
		if !matched {
			continue
		}

		if r.Priority == model.PriorityHigh || result.Priority != model.PriorityHigh {
			result.Intent = r.Intent
			result.Priority = r.Priority
		}
		result.Matches = append(result.Matches, r.Intent)
	}

	return result
}
