package interpreter

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiScorer calls the Gemini API as the NLU/sentiment scoring collaborator
type GeminiScorer struct {
	client *genai.Client
	model  string
}

// NewGeminiScorer creates the scoring client
func NewGeminiScorer(ctx context.Context, apiKey, model string) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiScorer{client: client, model: model}, nil
}

// Generate sends one scoring prompt and returns the raw model text
func (g *GeminiScorer) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
