package llmclient

import (
	"context"

	genai "google.golang.org/genai"
)

// GeminiGenerator generates text through the official genai client. It is the
// direct-Gemini alternative to the router-backed generator, used when only a
// Gemini key is configured.
type GeminiGenerator struct {
	cli   *genai.Client
	model string
}

// NewGeminiGenerator creates a Gemini generator. The genai client reads its
// API key from the environment (GEMINI_API_KEY).
func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiGenerator{cli: cli, model: model}, nil
}

// Generate sends prompt as a single content part. An empty candidate list
// yields "", not an error.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		nil,
	)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
