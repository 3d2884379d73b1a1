package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/violet/backend/internal/model/chat"
)

// EinoProvider runs a prompt through an eino chain: chat template, then the
// chat model (Volcengine Ark in production).
type EinoProvider struct {
	name  string
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewEinoProvider compiles the chain around chatModel.
func NewEinoProvider(ctx context.Context, name string, chatModel model.ChatModel) (*EinoProvider, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &EinoProvider{name: name, chain: runnable}, nil
}

// Name implements Provider.
func (p *EinoProvider) Name() string { return p.name }

// Generate implements Provider.
func (p *EinoProvider) Generate(ctx context.Context, in Prompt) (string, error) {
	response, err := p.chain.Invoke(ctx, map[string]any{
		"system":  in.System,
		"history": buildHistoryMessages(in.History),
		"query":   in.Query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}
	return response.Content, nil
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Speaker {
		case chat.User:
			history = append(history, schema.UserMessage(t.Text))
		case chat.Assistant:
			history = append(history, schema.AssistantMessage(t.Text, nil))
		}
	}
	return history
}
