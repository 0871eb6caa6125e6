package models

import "strings"

// DefaultCategory is used when a submission does not name one.
const DefaultCategory = "Social"

// Categories is the closed set of post categories.
var Categories = []string{"Tech", "Social", "Education", "Jobs", "Health", "Finance", "Travel"}

// NormalizeCategory resolves a submitted category to its canonical spelling.
// Empty input yields DefaultCategory; unknown input returns ok=false.
func NormalizeCategory(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCategory, true
	}
	for _, c := range Categories {
		if strings.EqualFold(c, raw) {
			return c, true
		}
	}
	return "", false
}
