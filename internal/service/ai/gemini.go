package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider calls one Gemini model through the genai SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini API client. httpClient may be nil.
func NewGeminiClient(ctx context.Context, apiKey string, httpClient *http.Client) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return client, nil
}

// NewGeminiProviders returns one provider per available model, ordered by
// priorities. When model discovery fails the priority list is used as is.
func NewGeminiProviders(ctx context.Context, client *genai.Client, priorities []string) []Provider {
	models, err := DiscoverGeminiModels(ctx, client, priorities)
	if err != nil || len(models) == 0 {
		models = priorities
	}

	providers := make([]Provider, 0, len(models))
	for _, m := range models {
		providers = append(providers, &GeminiProvider{client: client, model: m})
	}
	return providers
}

// DiscoverGeminiModels lists the account's generative Gemini models and sorts
// them by priorities.
func DiscoverGeminiModels(ctx context.Context, client *genai.Client, priorities []string) ([]string, error) {
	var names []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list gemini models: %w", err)
		}
		name := strings.TrimPrefix(m.Name, "models/")
		if strings.Contains(name, "gemini") && !strings.Contains(name, "embedding") {
			names = append(names, name)
		}
	}
	return SortByPriority(names, priorities), nil
}

// SortByPriority orders names so that every name containing priorities[0]
// comes first, then those containing priorities[1], and so on. Names matching
// no priority keep their relative order at the end.
func SortByPriority(names, priorities []string) []string {
	seen := make(map[string]bool, len(names))
	sorted := make([]string, 0, len(names))

	for _, p := range priorities {
		for _, n := range names {
			if !seen[n] && strings.Contains(n, p) {
				seen[n] = true
				sorted = append(sorted, n)
			}
		}
	}
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			sorted = append(sorted, n)
		}
	}
	return sorted
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini/" + p.model }

// Generate implements Provider.
func (p *GeminiProvider) Generate(ctx context.Context, in Prompt) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(in.Transcript()), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
