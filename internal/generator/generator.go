// Package generator wraps the text generation provider used for drafting and
// safety-checking posts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	DefaultModel   = "gemma-3-1b-it"
	apiVersion     = "v1beta"
	defaultTimeout = 30 * time.Second
)

// ErrEmptyCompletion is returned when the provider answers without text.
var ErrEmptyCompletion = errors.New("generator returned no text")

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

type settings struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Gemini client.
type Option func(*settings)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// NewGemini builds a client for the Gemini API backend. No request is made
// until Generate is called.
func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	s := settings{httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(&s)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: s.httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    s.baseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
