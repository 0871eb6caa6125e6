// Package sanitize normalizes user- and AI-supplied text before it is stored.
//
// All functions are total: they never fail and map empty input to empty output.
// Policies are built once and are safe for concurrent use.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// Mode selects how much markup survives sanitization.
type Mode int

const (
	// FreeText keeps a small set of safe inline markup.
	FreeText Mode = iota
	// TagToken strips all markup and keeps only word characters and spaces.
	TagToken
)

var (
	freeTextPolicy = newFreeTextPolicy()
	stripPolicy    = bluemonday.StrictPolicy()

	// script/style blocks are dropped with their content before the policy runs so
	// malformed closing tags cannot leak text through.
	scriptBlock = regexp.MustCompile(`(?is)<\s*(script|style)\b.*?<\s*/\s*(script|style)\s*>`)

	emphasisMarkers = regexp.MustCompile("\\*\\*|__|\\*|_|`")
	headingMarkers  = regexp.MustCompile(`(?m)^[ \t]*#+[ \t]+`)
	trailingTags    = regexp.MustCompile(`(?:\s*#\w+)+\s*$`)
)

func newFreeTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "s", "br", "p",
		"ul", "ol", "li", "blockquote", "code", "pre")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize cleans text according to mode.
func Sanitize(text string, mode Mode) string {
	if text == "" {
		return ""
	}
	switch mode {
	case TagToken:
		return tagToken(text)
	default:
		return freeText(text)
	}
}

func freeText(text string) string {
	text = scriptBlock.ReplaceAllString(text, "")
	return strings.TrimSpace(freeTextPolicy.Sanitize(text))
}

func tagToken(text string) string {
	text = scriptBlock.ReplaceAllString(text, "")
	text = html.UnescapeString(stripPolicy.Sanitize(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// StripGeneratedFormatting removes markdown emphasis and heading markers from
// generated text and drops a trailing run of hashtags. Hashtags in the middle
// of the text are kept.
func StripGeneratedFormatting(text string) string {
	if text == "" {
		return ""
	}
	text = emphasisMarkers.ReplaceAllString(text, "")
	text = headingMarkers.ReplaceAllString(text, "")
	text = trailingTags.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
