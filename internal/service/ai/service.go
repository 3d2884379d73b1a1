package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zhouzirui/violet/backend/internal/analysis/mood"
	"github.com/zhouzirui/violet/backend/internal/model/chat"
)

var (
	ErrNoProviders  = errors.New("no ai providers configured")
	ErrEmptyReply   = errors.New("provider returned an empty reply")
	ErrAllExhausted = errors.New("all ai providers failed")
)

// DefaultTimeout bounds a single provider attempt when none is configured.
const DefaultTimeout = 10 * time.Second

// Service answers open questions by trying providers in priority order. Each
// attempt runs under its own timeout; the first non-empty reply wins.
type Service struct {
	providers []Provider
	timeout   time.Duration
	template  PromptTemplate
}

// NewService creates a service over the given providers, highest priority first.
func NewService(providers []Provider, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		providers: append([]Provider(nil), providers...),
		timeout:   timeout,
		template:  DefaultTemplate,
	}
}

// Providers lists provider names in the order they are tried.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate returns the first successful reply. When every provider fails the
// error wraps ErrAllExhausted together with each provider's failure.
func (s *Service) Generate(ctx context.Context, p Prompt) (string, error) {
	if len(s.providers) == 0 {
		return "", ErrNoProviders
	}

	errs := []error{ErrAllExhausted}
	for _, provider := range s.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		reply, err := s.try(ctx, provider, p)
		if err == nil {
			slog.Debug("ai provider succeeded", "provider", provider.Name(), "length", len(reply))
			return reply, nil
		}
		slog.Warn("ai provider failed", "provider", provider.Name(), "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
	}
	return "", errors.Join(errs...)
}

func (s *Service) try(ctx context.Context, provider Provider, p Prompt) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := provider.Generate(attemptCtx, p)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// Ask answers a free-form question in the assistant's voice, biased by mood
// and grounded in the prior turns. Failures become an apology.
func (s *Service) Ask(ctx context.Context, question string, m mood.Mood, history []chat.Turn) string {
	reply, err := s.Generate(ctx, Prompt{
		System:  s.template.BuildSystemPrompt(m),
		History: history,
		Query:   question,
	})
	switch {
	case err == nil:
		return reply
	case errors.Is(err, ErrNoProviders):
		return "Sorry boss, no valid AI models found for this key."
	default:
		return "Sorry boss, I tried all AI models but they are having trouble. Please check the API Key."
	}
}

// Translate renders text in the target language.
func (s *Service) Translate(ctx context.Context, text, target string) string {
	reply, err := s.Generate(ctx, Prompt{Query: TranslationPrompt(text, target)})
	switch {
	case err == nil:
		return fmt.Sprintf("🌐 Translation (%s):\n\n%s", titleCase(target), reply)
	case errors.Is(err, ErrNoProviders):
		return "Sorry boss, no AI models available for translation."
	default:
		return "Sorry boss, I couldn't translate that. No working model found."
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
