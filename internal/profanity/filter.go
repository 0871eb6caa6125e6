// Package profanity decides whether user text contains blocklisted terms.
//
// Matching is a case-insensitive substring test. This over-blocks words that
// contain a blocked term and misses obfuscated spellings; callers accept both.
package profanity

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSets maps a rule-set name to its terms.
type RuleSets map[string][]string

// DefaultRuleSets are used when no rules file is configured.
func DefaultRuleSets() RuleSets {
	base := []string{"fuck", "shit", "damn", "bitch", "fuckoff"}
	strict := append(append([]string{}, base...), "idiot", "stupid")
	return RuleSets{
		"default": base,
		"strict":  strict,
	}
}

// LoadRuleSets reads a YAML document of the form
//
//	default:
//	  - term
//	strict:
//	  - other
//
// Sets in the file replace built-in sets of the same name.
func LoadRuleSets(path string) (RuleSets, error) {
	sets := DefaultRuleSets()
	if path == "" {
		return sets, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profanity rules: %w", err)
	}
	var fromFile RuleSets
	if err := yaml.Unmarshal(raw, &fromFile); err != nil {
		return nil, fmt.Errorf("parse profanity rules: %w", err)
	}
	for name, terms := range fromFile {
		sets[name] = terms
	}
	return sets, nil
}

// Filter is an immutable matcher built from one or more rule sets.
type Filter struct {
	terms []string
}

// NewFilter builds a Filter from the named sets. Unknown names are an error.
func NewFilter(sets RuleSets, enabled ...string) (*Filter, error) {
	if len(enabled) == 0 {
		enabled = []string{"default"}
	}
	seen := make(map[string]struct{})
	var terms []string
	for _, name := range enabled {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set, ok := sets[name]
		if !ok {
			return nil, fmt.Errorf("unknown profanity rule set %q", name)
		}
		for _, term := range set {
			term = strings.ToLower(strings.TrimSpace(term))
			if term == "" {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return &Filter{terms: terms}, nil
}

// MustDefault returns a Filter over the built-in default set.
func MustDefault() *Filter {
	f, err := NewFilter(DefaultRuleSets(), "default")
	if err != nil {
		panic(err)
	}
	return f
}

// Check returns the first blocked term found in text, if any.
func (f *Filter) Check(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lowered := strings.ToLower(text)
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return term, true
		}
	}
	return "", false
}

// IsClean reports whether text contains no blocked term.
func (f *Filter) IsClean(text string) bool {
	_, hit := f.Check(text)
	return !hit
}

// CheckAll returns the first blocked term across all fields.
// A submission is rejected if any field individually fails.
func (f *Filter) CheckAll(fields ...string) (string, bool) {
	for _, field := range fields {
		if term, hit := f.Check(field); hit {
			return term, true
		}
	}
	return "", false
}

// CheckPost screens a post submission field by field.
func (f *Filter) CheckPost(title, content, hashtags string) (string, bool) {
	return f.CheckAll(title, content, hashtags)
}

// Terms returns a copy of the active terms.
func (f *Filter) Terms() []string {
	return append([]string(nil), f.terms...)
}
