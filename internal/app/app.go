// Package app assembles the assistant's services from configuration.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/zhouzirui/violet/backend/internal/ambient/chime"
	"github.com/zhouzirui/violet/backend/internal/ambient/clap"
	"github.com/zhouzirui/violet/backend/internal/ambient/mic"
	"github.com/zhouzirui/violet/backend/internal/config"
	"github.com/zhouzirui/violet/backend/internal/intent"
	"github.com/zhouzirui/violet/backend/internal/proxy"
	"github.com/zhouzirui/violet/backend/internal/service/ai"
	"github.com/zhouzirui/violet/backend/internal/service/chat"
	"github.com/zhouzirui/violet/backend/internal/service/events"
	"github.com/zhouzirui/violet/backend/internal/service/launcher"
	"github.com/zhouzirui/violet/backend/internal/service/news"
	"github.com/zhouzirui/violet/backend/internal/service/weather"
)

// App holds the wired services.
type App struct {
	Config   *config.Config
	AI       *ai.Service
	Weather  *weather.Service
	News     *news.Service
	Launcher *launcher.Launcher
	Session  *chat.Service
	Events   *events.Hub
	Router   *intent.Router
	Detector *clap.Detector
}

// Build wires every service. The detector is created but not started, and is
// nil when CLAP_ENABLED is false.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	client, err := proxy.NewHTTPClient(cfg.Proxy.SOCKSAddr, 30*time.Second)
	if err != nil {
		return nil, err
	}
	if cfg.Proxy.SOCKSAddr != "" {
		slog.Info("outbound requests use socks proxy", "addr", cfg.Proxy.SOCKSAddr)
	}

	providers := ai.BuildProviders(ctx, cfg.AI, client)
	aiSvc := ai.NewService(providers, cfg.AI.Timeout)
	if len(providers) == 0 {
		slog.Warn("no AI provider configured, open questions will get an apology")
	} else {
		slog.Info("AI providers ready", "order", aiSvc.Providers())
	}

	a := &App{
		Config:   cfg,
		AI:       aiSvc,
		Weather:  weather.NewService(cfg.Weather, client),
		News:     news.NewService(cfg.News, client),
		Launcher: launcher.New(cfg.Launcher, launcher.WithHTTPClient(client)),
		Session:  chat.NewService(cfg.Session.HistoryLimit),
		Events:   events.NewHub(),
	}

	a.Router = intent.New(intent.Deps{
		Session:   a.Session,
		Knowledge: a.AI,
		Weather:   a.Weather,
		News:      a.News,
		Launcher:  a.Launcher,
	})

	if cfg.Clap.Enabled {
		a.Detector = a.newDetector()
	}
	return a, nil
}

func (a *App) newDetector() *clap.Detector {
	cfg := a.Config.Clap
	query := cfg.Query

	action := func(ctx context.Context) {
		reply := a.Launcher.PlayYouTube(ctx, query)
		slog.Info("clap action finished", "query", query, "reply", reply)
	}

	var opts []clap.Option
	if cfg.Chime {
		opts = append(opts, clap.WithChime(func() {
			if err := chime.Play(); err != nil {
				slog.Warn("chime failed", "err", err)
			}
		}))
	}

	return clap.New(clap.ConfigFrom(cfg), mic.Opener(cfg.SampleRate, cfg.FrameSize), a.Events, action, opts...)
}

// WatchApps follows LAUNCHER_APPS_FILE until ctx is done. It returns
// immediately when no file is configured.
func (a *App) WatchApps(ctx context.Context) error {
	path := a.Config.Launcher.AppsFile
	if path == "" {
		return nil
	}
	slog.Info("watching launcher app table", "path", path)
	return a.Launcher.WatchApps(ctx, path)
}

// StartDetector starts the clap detector when enabled. A failure to open the
// microphone is logged and the assistant keeps running without it.
func (a *App) StartDetector(ctx context.Context) {
	if a.Detector == nil {
		return
	}
	if err := a.Detector.Start(ctx); err != nil {
		slog.Warn("clap detection disabled", "err", err)
		return
	}
	slog.Info("clap detection started", "threshold", a.Config.Clap.Threshold)
}

// Close stops the detector and closes the event hub.
func (a *App) Close() {
	if a.Detector != nil {
		a.Detector.Stop()
	}
	a.Events.Close()
}
