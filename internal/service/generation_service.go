package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"postboard/internal/featureflags"
	"postboard/internal/generator"
	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/observability"
	"postboard/internal/profanity"
	"postboard/internal/sanitize"
)

// Safety verdicts returned by Check.
const (
	VerdictSafe   = "SAFE"
	VerdictUnsafe = "UNSAFE"
)

var errNoJSON = errors.New("completion did not contain a JSON object")

// GeneratedPost is a draft produced from a topic.
type GeneratedPost struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Hashtags string `json:"hashtags"`
	Category string `json:"category"`
}

// GenerationService drafts posts and pre-screens content with the text generator.
type GenerationService struct {
	gen    generator.Generator
	filter *profanity.Filter
	flags  *featureflags.Manager
}

// NewGenerationService returns a service; gen may be nil when AI is disabled.
func NewGenerationService(gen generator.Generator, filter *profanity.Filter, flags *featureflags.Manager) *GenerationService {
	return &GenerationService{gen: gen, filter: filter, flags: flags}
}

func (s *GenerationService) enabled(visitor string) bool {
	return s.gen != nil && s.flags.Enabled(featureflags.AIGeneration, visitor)
}

// Generate drafts a post about topic.
func (s *GenerationService) Generate(ctx context.Context, topic, visitor string) (*GeneratedPost, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, models.NewValidationError("No topic provided")
	}
	if !s.enabled(visitor) {
		return nil, models.NewForbiddenError("AI generation is disabled")
	}

	ctx, done := observability.StartOperation(ctx, "generation.generate", "")
	text, err := s.gen.Generate(ctx, generatePrompt(topic))
	if err == nil {
		var post *GeneratedPost
		post, err = parseGeneratedPost(text)
		if err == nil {
			done(nil)
			observability.GenerationRequests.WithLabelValues("generate", "ok").Inc()
			return post, nil
		}
	}
	done(err)
	observability.GenerationRequests.WithLabelValues("generate", "error").Inc()
	middleware.Logger.ErrorContext(ctx, "post generation failed", slog.String("error", err.Error()))
	return nil, &models.AppError{Code: models.CodeInternal, Message: "AI could not generate content.", Err: err}
}

// Check returns SAFE or UNSAFE. The keyword filter runs first; provider
// failures fail open to SAFE.
func (s *GenerationService) Check(ctx context.Context, content, hashtags, visitor string) string {
	full := strings.TrimSpace(content + " " + hashtags)
	if full == "" {
		return VerdictSafe
	}
	if term, hit := s.filter.Check(full); hit {
		observability.ModerationRejections.WithLabelValues("check").Inc()
		middleware.Logger.DebugContext(ctx, "check rejected by keyword filter", slog.String("term", term))
		return VerdictUnsafe
	}
	if !s.enabled(visitor) {
		return VerdictSafe
	}

	ctx, done := observability.StartOperation(ctx, "generation.check", "")
	text, err := s.gen.Generate(ctx, checkPrompt(full))
	done(err)
	if err != nil {
		observability.GenerationRequests.WithLabelValues("check", "error").Inc()
		middleware.Logger.WarnContext(ctx, "safety check unavailable, allowing content", slog.String("error", err.Error()))
		return VerdictSafe
	}
	observability.GenerationRequests.WithLabelValues("check", "ok").Inc()
	if strings.Contains(strings.ToUpper(text), VerdictUnsafe) {
		return VerdictUnsafe
	}
	return VerdictSafe
}

func generatePrompt(topic string) string {
	quoted := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		quoted[i] = "'" + c + "'"
	}
	return fmt.Sprintf("Act as a professional blogger. Write about: '%s' (approx 100 words). "+
		"Classify the topic into exactly ONE of these categories: [%s]. "+
		"Return ONLY a JSON object with keys: title, content, hashtags, category. \n"+
		"RULES: \n"+
		"1. 'hashtags' must be a LIST of strings, e.g. [\"#Tag1\", \"#Tag2\"]. \n"+
		"2. 'category' must be exactly one string from the provided list. \n"+
		"3. 'content' must NOT contain hashtags. \n"+
		"4. Do not use markdown formatting.",
		topic, strings.Join(quoted, ", "))
}

func checkPrompt(text string) string {
	return "Is this content safe for all ages? Reply ONLY SAFE or UNSAFE.\nText: " + text
}

// parseGeneratedPost extracts the JSON object between the first '{' and the
// last '}' of a completion and normalizes its fields.
func parseGeneratedPost(text string) (*GeneratedPost, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return nil, errNoJSON
	}

	var raw struct {
		Title    string          `json:"title"`
		Content  string          `json:"content"`
		Hashtags json.RawMessage `json:"hashtags"`
		Category string          `json:"category"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode generated post: %w", err)
	}

	category, ok := models.NormalizeCategory(raw.Category)
	if !ok {
		category = models.DefaultCategory
	}

	return &GeneratedPost{
		Title:    sanitize.StripGeneratedFormatting(raw.Title),
		Content:  sanitize.StripGeneratedFormatting(raw.Content),
		Hashtags: joinHashtags(raw.Hashtags),
		Category: category,
	}, nil
}

// joinHashtags accepts either a list of tags or a single string and returns
// space separated tags.
func joinHashtags(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		tags := make([]string, 0, len(list))
		for _, tag := range list {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		return strings.Join(tags, " ")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err != nil {
		return ""
	}
	return spaceBeforeHash(single)
}

// spaceBeforeHash inserts a space before every '#' that does not already follow whitespace.
func spaceBeforeHash(s string) string {
	var sb strings.Builder
	prev := ' '
	for _, r := range s {
		if r == '#' && !unicode.IsSpace(prev) {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
		prev = r
	}
	return strings.TrimSpace(sb.String())
}
