package ai

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/violet/backend/internal/analysis/mood"
)

// PromptTemplate defines the structure of the assistant's system prompt.
type PromptTemplate struct {
	Identity         string
	PersonalityHints []string
	FormattingRules  []string
}

// DefaultTemplate is the VIOLET personality.
var DefaultTemplate = PromptTemplate{
	Identity: "You are VIOLET, a professional, human-like personal assistant. " +
		"You address the user as \"boss\" and answer concisely, naturally and helpfully.",
	PersonalityHints: []string{
		"Warm and confident, never robotic.",
		"Prefer short answers; expand only when the question needs it.",
		"If you are not sure, say so instead of guessing.",
	},
	FormattingRules: []string{
		"Your output is shown as plain text and spoken aloud. Never use Markdown or triple backticks.",
		"Structure comes only from line breaks, spacing and indentation.",
		"Code starts on a new line after a blank line, properly indented, without labels.",
		"Lists use numbers or simple bullets; comparisons use plain-text tables.",
	},
}

// BuildSystemPrompt renders the template and appends guidance for the mood.
func (t PromptTemplate) BuildSystemPrompt(m mood.Mood) string {
	var b strings.Builder
	b.WriteString(t.Identity)

	if len(t.PersonalityHints) > 0 {
		b.WriteString("\n\nPersonality:\n- ")
		b.WriteString(strings.Join(t.PersonalityHints, "\n- "))
	}
	if len(t.FormattingRules) > 0 {
		b.WriteString("\n\nFormatting rules:\n- ")
		b.WriteString(strings.Join(t.FormattingRules, "\n- "))
	}
	if guidance := m.Guidance(); guidance != "" {
		b.WriteString("\n\n")
		b.WriteString(guidance)
	}
	return b.String()
}

// TranslationPrompt asks for a bare translation with automatic source detection.
func TranslationPrompt(text, target string) string {
	return fmt.Sprintf(
		"Translate the following text to %s. Detect the source language automatically. "+
			"Only provide the translation, no explanations:\n\n%s", target, text)
}
