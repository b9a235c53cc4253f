package content

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxTopicLen      = 200
	maxScopeLen      = 200
	maxConstraints   = 10
	maxConstraintLen = 200
	MinConcepts      = 3
	MaxConcepts      = 7
	DefaultConcepts  = 5
)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// NewDeckRequest validates and normalizes raw deck-request fields. The issues
// slice is empty for a valid request.
func NewDeckRequest(raw DeckRequest) (DeckRequest, []string) {
	issues := make([]string, 0)

	raw.Topic = strings.TrimSpace(raw.Topic)
	raw.Scope = strings.TrimSpace(raw.Scope)
	raw.DifficultyLevel = strings.ToLower(strings.TrimSpace(raw.DifficultyLevel))

	if raw.Topic == "" {
		issues = append(issues, "topic missing")
	} else if len(raw.Topic) > maxTopicLen {
		issues = append(issues, fmt.Sprintf("topic too long (max %d)", maxTopicLen))
	}
	if len(raw.Scope) > maxScopeLen {
		issues = append(issues, fmt.Sprintf("scope too long (max %d)", maxScopeLen))
	}
	if raw.DifficultyLevel == "" {
		raw.DifficultyLevel = "beginner"
	}
	if !contains(Difficulties, raw.DifficultyLevel) {
		issues = append(issues, fmt.Sprintf("difficulty_level must be one of %s", strings.Join(Difficulties, "|")))
	}
	if raw.MaxConcepts == 0 {
		raw.MaxConcepts = DefaultConcepts
	}
	if raw.MaxConcepts < MinConcepts || raw.MaxConcepts > MaxConcepts {
		issues = append(issues, fmt.Sprintf("max_concepts must be %d-%d", MinConcepts, MaxConcepts))
	}

	return raw, issues
}

// NewExampleRequest validates and normalizes raw example-request fields.
// Constraint normalization (trim, drop empties, dedupe, sort) makes an absent
// list and an empty list indistinguishable downstream.
func NewExampleRequest(raw ExampleRequest) (ExampleRequest, []string) {
	issues := make([]string, 0)

	raw.Style = strings.ToLower(strings.TrimSpace(raw.Style))
	raw.Length = strings.ToLower(strings.TrimSpace(raw.Length))
	if raw.Style == "" {
		raw.Style = "default"
	}
	if raw.Length == "" {
		raw.Length = "medium"
	}
	if !contains(ExampleStyles, raw.Style) {
		issues = append(issues, fmt.Sprintf("style must be one of %s", strings.Join(ExampleStyles, "|")))
	}
	if !contains(ExampleLengths, raw.Length) {
		issues = append(issues, fmt.Sprintf("length must be one of %s", strings.Join(ExampleLengths, "|")))
	}

	raw.Constraints = NormalizeConstraints(raw.Constraints)
	if len(raw.Constraints) > maxConstraints {
		issues = append(issues, fmt.Sprintf("too many constraints (max %d)", maxConstraints))
	}
	for i, c := range raw.Constraints {
		if len(c) > maxConstraintLen {
			issues = append(issues, fmt.Sprintf("constraint[%d] too long (max %d)", i, maxConstraintLen))
		}
	}

	return raw, issues
}

// NormalizeConstraints trims, drops empties, dedupes, and sorts. A nil input
// normalizes to nil so representation differences never leak into identity.
func NormalizeConstraints(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
