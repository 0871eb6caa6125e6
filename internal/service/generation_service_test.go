package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"postboard/internal/featureflags"
	"postboard/internal/models"
	"postboard/internal/profanity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newGenerationService(gen *mockGenerator, flags string) *GenerationService {
	return NewGenerationService(gen, profanity.MustDefault(), featureflags.NewManager(flags))
}

func TestGenerationService_Generate(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "'golang'") && strings.Contains(p, "'Tech'") && strings.Contains(p, "'Travel'")
	})).Return("```json\n{\"title\": \"**Go** rocks\", \"content\": \"# Intro\\nUse _Go_ daily #go #dev\","+
		" \"hashtags\": [\"#Go\", \" #Dev \"], \"category\": \"Tech\"}\n```", nil)

	svc := newGenerationService(gen, "ai_generation=on")
	post, err := svc.Generate(context.Background(), " golang ", "v")
	require.NoError(t, err)
	assert.Equal(t, &GeneratedPost{
		Title:    "Go rocks",
		Content:  "Intro\nUse Go daily",
		Hashtags: "#Go #Dev",
		Category: "Tech",
	}, post)
	gen.AssertExpectations(t)
}

func TestGenerationService_GenerateNormalizes(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`Sure! {"title":"T","content":"C","hashtags":"#one#two #three","category":"Gossip"}`, nil)

	post, err := newGenerationService(gen, "ai_generation=on").Generate(context.Background(), "x", "v")
	require.NoError(t, err)
	assert.Equal(t, "#one #two #three", post.Hashtags)
	assert.Equal(t, models.DefaultCategory, post.Category)
}

func TestGenerationService_GenerateFailures(t *testing.T) {
	ctx := context.Background()

	_, err := newGenerationService(new(mockGenerator), "ai_generation=on").Generate(ctx, "  ", "v")
	assert.True(t, models.IsCode(err, models.CodeValidation))

	_, err = newGenerationService(new(mockGenerator), "ai_generation=off").Generate(ctx, "x", "v")
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	noJSON := new(mockGenerator)
	noJSON.On("Generate", mock.Anything, mock.Anything).Return("I cannot help with that", nil)
	_, err = newGenerationService(noJSON, "ai_generation=on").Generate(ctx, "x", "v")
	assert.True(t, models.IsCode(err, models.CodeInternal))

	down := new(mockGenerator)
	down.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	_, err = newGenerationService(down, "ai_generation=on").Generate(ctx, "x", "v")
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.Equal(t, 500, models.HTTPStatus(err))
}

func TestGenerationService_Check(t *testing.T) {
	ctx := context.Background()

	prefilter := new(mockGenerator)
	assert.Equal(t, VerdictUnsafe, newGenerationService(prefilter, "ai_generation=on").Check(ctx, "what the hell, damn", "", "v"))
	prefilter.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	unsafe := new(mockGenerator)
	unsafe.On("Generate", mock.Anything, mock.Anything).Return("unsafe.", nil)
	assert.Equal(t, VerdictUnsafe, newGenerationService(unsafe, "ai_generation=on").Check(ctx, "borderline", "#tag", "v"))

	safe := new(mockGenerator)
	safe.On("Generate", mock.Anything, mock.Anything).Return("SAFE", nil)
	assert.Equal(t, VerdictSafe, newGenerationService(safe, "ai_generation=on").Check(ctx, "hello", "", "v"))

	down := new(mockGenerator)
	down.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	assert.Equal(t, VerdictSafe, newGenerationService(down, "ai_generation=on").Check(ctx, "hello", "", "v"))

	disabled := new(mockGenerator)
	assert.Equal(t, VerdictSafe, newGenerationService(disabled, "").Check(ctx, "hello", "", "v"))
	disabled.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}
