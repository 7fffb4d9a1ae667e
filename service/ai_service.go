package service

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini API through the genai client.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a client for the Gemini developer API.
// baseURL overrides the endpoint when set.
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, opts GenerationOptions) (TextSource, error) {
	resp, err := g.client.Models.GenerateContent(ctx, opts.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		TopP:            genai.Ptr(opts.TopP),
		MaxOutputTokens: opts.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	return geminiResponse{resp: resp}, nil
}

type geminiResponse struct {
	resp *genai.GenerateContentResponse
}

func (r geminiResponse) DirectText() string {
	if r.resp == nil {
		return ""
	}
	return r.resp.Text()
}

func (r geminiResponse) CandidateTexts() []string {
	if r.resp == nil {
		return nil
	}
	var out []string
	for _, cand := range r.resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				out = append(out, part.Text)
			}
		}
	}
	return out
}
