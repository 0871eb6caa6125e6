// Package featureflags evaluates runtime toggles configured through FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags consulted by the application.
const (
	// ReportCooldown refuses a second report of the same target by the same visitor.
	ReportCooldown = "report_cooldown"
	// AIGeneration enables the generate and check endpoints.
	AIGeneration = "ai_generation"
)

// Defaults are in force for any flag FEATURE_FLAGS does not mention, so
// overriding one flag never silently switches another off.
var Defaults = map[string]string{
	ReportCooldown: "on",
	AIGeneration:   "on",
}

// rule is a parsed flag value: a share of visitors between 0 and 100.
// Boolean values parse to 0 or 100.
type rule struct {
	raw     string
	percent int
}

func parseRule(value string) rule {
	switch value {
	case "on", "true", "1":
		return rule{raw: value, percent: 100}
	case "off", "false", "0":
		return rule{raw: value}
	}
	digits, ok := strings.CutSuffix(value, "%")
	if !ok {
		return rule{raw: value}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return rule{raw: value}
	}
	return rule{raw: value, percent: min(max(n, 0), 100)}
}

// Manager holds flags parsed from "name=value" pairs, for example
// "report_cooldown=on,ai_generation=25%". A nil Manager has every flag off.
type Manager struct {
	rules map[string]rule
}

// NewManager parses a comma-separated flag list. Malformed pairs are skipped;
// an unrecognized value keeps the flag listed but off.
func NewManager(raw string) *Manager {
	return NewManagerWithDefaults(raw, nil)
}

// NewManagerWithDefaults seeds the manager with defaults, then applies raw on
// top; a flag named in raw always wins.
func NewManagerWithDefaults(raw string, defaults map[string]string) *Manager {
	m := &Manager{rules: make(map[string]rule, len(defaults))}
	for name, value := range defaults {
		m.rules[normalize(name)] = parseRule(normalize(value))
	}
	for _, pair := range strings.Split(raw, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name, value = normalize(name), normalize(value)
		if name == "" || value == "" {
			continue
		}
		m.rules[name] = parseRule(value)
	}
	return m
}

// Enabled evaluates name for one visitor. Partial rollouts hash the visitor so
// the answer is stable, and an anonymous caller never lands in one.
func (m *Manager) Enabled(name, visitor string) bool {
	if m == nil {
		return false
	}
	r, ok := m.rules[normalize(name)]
	switch {
	case !ok || r.percent == 0:
		return false
	case r.percent == 100:
		return true
	case visitor == "":
		return false
	}
	return bucket(name, visitor) < r.percent
}

// Raw returns the configured value of every flag.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.rules))
	for name, r := range m.rules {
		out[name] = r.raw
	}
	return out
}

// Snapshot evaluates every configured flag for visitor.
func (m *Manager) Snapshot(visitor string) map[string]bool {
	out := make(map[string]bool, len(m.rules))
	for name := range m.rules {
		out[name] = m.Enabled(name, visitor)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name, visitor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(visitor))
	return int(h.Sum32() % 100)
}
