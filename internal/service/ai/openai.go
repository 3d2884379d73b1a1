package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/zhouzirui/violet/backend/internal/model/chat"
)

// OpenAIProvider calls one chat-completions model.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProviders returns one provider per model sharing a client.
func NewOpenAIProviders(apiKey, baseURL string, models []string, httpClient *http.Client, extra ...option.RequestOption) []Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	opts = append(opts, extra...)

	client := openai.NewClient(opts...)
	providers := make([]Provider, 0, len(models))
	for _, m := range models {
		providers = append(providers, &OpenAIProvider{client: client, model: m})
	}
	return providers
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai/" + p.model }

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, in Prompt) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: buildOpenAIMessages(in),
		Model:    openai.ChatModel(p.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func buildOpenAIMessages(in Prompt) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(in.History)+2)
	if in.System != "" {
		messages = append(messages, openai.SystemMessage(in.System))
	}
	for _, t := range in.History {
		switch t.Speaker {
		case chat.User:
			messages = append(messages, openai.UserMessage(t.Text))
		case chat.Assistant:
			messages = append(messages, openai.AssistantMessage(t.Text))
		}
	}
	return append(messages, openai.UserMessage(in.Query))
}
