package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzirui/violet/backend/internal/model/chat"
)

// Prompt is a provider-neutral request: a system prompt, the prior turns and
// the current query.
type Prompt struct {
	System  string
	History []chat.Turn
	Query   string
}

// Provider generates a reply for a prompt. Implementations wrap one model.
type Provider interface {
	Name() string
	Generate(ctx context.Context, p Prompt) (string, error)
}

// Transcript flattens the prompt into a single text block for models that
// take one content string. A prompt with only a query is returned as is.
func (p Prompt) Transcript() string {
	if p.System == "" && len(p.History) == 0 {
		return p.Query
	}

	var b strings.Builder
	if p.System != "" {
		b.WriteString(p.System)
		b.WriteString("\n\n")
	}
	if len(p.History) > 0 {
		b.WriteString("CONVERSATION HISTORY:\n")
		for _, t := range p.History {
			fmt.Fprintf(&b, "%s: %s\n", speakerLabel(t.Speaker), t.Text)
		}
		b.WriteString("\n")
	}
	b.WriteString("CURRENT REQUEST:\nUser says: ")
	b.WriteString(p.Query)
	b.WriteString("\n\nRespond as VIOLET (concise, natural, helpful):")
	return b.String()
}

func speakerLabel(s chat.Speaker) string {
	if s == chat.Assistant {
		return "Violet"
	}
	return "User"
}
