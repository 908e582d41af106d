package llm

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"
)

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient authenticates with apiKey. baseURL may be empty to use the
// public endpoint.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: "v1",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](Temperature),
			TopK:            genai.Ptr[float32](TopK),
			TopP:            genai.Ptr[float32](TopP),
			MaxOutputTokens: MaxOutputTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: gemini %s: %v", ErrTransport, g.model, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrMalformedResponse)
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil || content.Parts[0].Text == "" {
		return "", fmt.Errorf("%w: first candidate has no text", ErrMalformedResponse)
	}
	return content.Parts[0].Text, nil
}
