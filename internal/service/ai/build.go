package ai

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zhouzirui/violet/backend/internal/config"
)

// BuildProviders assembles providers in cfg.Providers order. Backends without
// credentials are skipped; a backend that fails to initialise is logged and
// skipped so the rest of the assistant keeps working.
func BuildProviders(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) []Provider {
	var providers []Provider

	for _, name := range cfg.Providers {
		switch strings.ToLower(name) {
		case "gemini":
			if !cfg.Gemini.Enabled() {
				continue
			}
			client, err := NewGeminiClient(ctx, cfg.Gemini.APIKey, httpClient)
			if err != nil {
				slog.Warn("gemini provider disabled", "err", err)
				continue
			}
			providers = append(providers, NewGeminiProviders(ctx, client, cfg.Gemini.Models)...)

		case "ark":
			if !cfg.Ark.Enabled() {
				continue
			}
			chatModel, err := cfg.Ark.NewChatModel(ctx)
			if err != nil {
				slog.Warn("ark provider disabled", "err", err)
				continue
			}
			p, err := NewEinoProvider(ctx, "ark/"+cfg.Ark.Model, chatModel)
			if err != nil {
				slog.Warn("ark provider disabled", "err", err)
				continue
			}
			providers = append(providers, p)

		case "openai":
			if !cfg.OpenAI.Enabled() {
				continue
			}
			providers = append(providers, NewOpenAIProviders(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Models, httpClient)...)

		default:
			slog.Warn("unknown ai provider ignored", "provider", name)
		}
	}

	slog.Info("ai providers ready", "count", len(providers))
	return providers
}
