package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	maxTitleLen     = 100
	bulletsPerCard  = 5
	maxBulletLen    = 160
	maxHintLen      = 200
	maxExampleLen   = 2000
	maxSteps        = 10
	maxStepLen      = 300
	maxPitfalls     = 5
	maxPitfallLen   = 200
	maxSourceRefLen = 50
)

// ValidateDeckOutput checks a raw model object against the deck artifact's
// structural constraints. The typed output is only meaningful when the issues
// slice comes back empty.
func ValidateDeckOutput(obj map[string]any) (*LLMDeckOutput, []string) {
	if obj == nil {
		return nil, []string{"output is not a JSON object"}
	}
	var out LLMDeckOutput
	if errs := decodeStrict(obj, &out); len(errs) > 0 {
		return nil, errs
	}

	issues := make([]string, 0)
	n := len(out.Concepts)
	if n < MinConcepts || n > MaxConcepts {
		issues = append(issues, fmt.Sprintf("concepts count must be %d-%d (got %d)", MinConcepts, MaxConcepts, n))
	}
	seenTitles := map[string]bool{}
	for i, c := range out.Concepts {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			issues = append(issues, fmt.Sprintf("concept[%d] title missing", i))
		} else if len(title) > maxTitleLen {
			issues = append(issues, fmt.Sprintf("concept[%d] title too long (max %d)", i, maxTitleLen))
		}
		lower := strings.ToLower(title)
		if lower != "" && seenTitles[lower] {
			issues = append(issues, fmt.Sprintf("concept[%d] title duplicates another concept (%q)", i, title))
		}
		seenTitles[lower] = true

		if len(c.Bullets) != bulletsPerCard {
			issues = append(issues, fmt.Sprintf("concept[%d] must have exactly %d bullets (got %d)", i, bulletsPerCard, len(c.Bullets)))
		}
		for j, b := range c.Bullets {
			b = strings.TrimSpace(b)
			if b == "" {
				issues = append(issues, fmt.Sprintf("concept[%d] bullet[%d] missing", i, j))
			} else if len(b) > maxBulletLen {
				issues = append(issues, fmt.Sprintf("concept[%d] bullet[%d] too long (max %d)", i, j, maxBulletLen))
			}
		}
		if c.ExamplePossible && strings.TrimSpace(c.ExampleHint) == "" {
			issues = append(issues, fmt.Sprintf("concept[%d] example_hint required when example_possible", i))
		}
		if len(c.ExampleHint) > maxHintLen {
			issues = append(issues, fmt.Sprintf("concept[%d] example_hint too long (max %d)", i, maxHintLen))
		}
	}

	return &out, dedupeStrings(issues)
}

// ValidateExampleOutput checks a raw model object against the example
// artifact's structural constraints.
func ValidateExampleOutput(obj map[string]any) (*LLMExampleOutput, []string) {
	if obj == nil {
		return nil, []string{"output is not a JSON object"}
	}
	var out LLMExampleOutput
	if errs := decodeStrict(obj, &out); len(errs) > 0 {
		return nil, errs
	}

	issues := make([]string, 0)
	example := strings.TrimSpace(out.Example)
	if example == "" {
		issues = append(issues, "example missing")
	} else if len(out.Example) > maxExampleLen {
		issues = append(issues, fmt.Sprintf("example too long (max %d)", maxExampleLen))
	}

	if len(out.Steps) > maxSteps {
		issues = append(issues, fmt.Sprintf("too many steps (max %d)", maxSteps))
	}
	for i, s := range out.Steps {
		if strings.TrimSpace(s) == "" {
			issues = append(issues, fmt.Sprintf("step[%d] missing", i))
		} else if len(s) > maxStepLen {
			issues = append(issues, fmt.Sprintf("step[%d] too long (max %d)", i, maxStepLen))
		}
	}

	if len(out.Pitfalls) > maxPitfalls {
		issues = append(issues, fmt.Sprintf("too many pitfalls (max %d)", maxPitfalls))
	}
	for i, p := range out.Pitfalls {
		if strings.TrimSpace(p) == "" {
			issues = append(issues, fmt.Sprintf("pitfall[%d] missing", i))
		} else if len(p) > maxPitfallLen {
			issues = append(issues, fmt.Sprintf("pitfall[%d] too long (max %d)", i, maxPitfallLen))
		}
	}

	for i, ref := range out.SourceRefs {
		if strings.TrimSpace(ref) == "" {
			issues = append(issues, fmt.Sprintf("source_ref[%d] missing", i))
		} else if len(ref) > maxSourceRefLen {
			issues = append(issues, fmt.Sprintf("source_ref[%d] too long (max %d)", i, maxSourceRefLen))
		}
	}

	return &out, dedupeStrings(issues)
}

// decodeStrict round-trips an untyped object into the target struct,
// rejecting unknown fields.
func decodeStrict(obj map[string]any, target any) []string {
	raw, err := json.Marshal(obj)
	if err != nil {
		return []string{fmt.Sprintf("output not serializable: %v", err)}
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return []string{fmt.Sprintf("output shape invalid: %v", err)}
	}
	return nil
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
