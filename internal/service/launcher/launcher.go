// Package launcher opens local applications, web searches and YouTube, and
// performs the guarded shutdown action.
package launcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/browser"

	"github.com/zhouzirui/violet/backend/internal/config"
)

// Runner starts a detached process.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) error

// Start implements Runner.
func (f RunnerFunc) Start(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

// ExecRunner starts processes with os/exec and reaps them in the background.
type ExecRunner struct{}

// Start implements Runner.
func (ExecRunner) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

const (
	searchURL        = "https://www.google.com/search?q="
	youTubeBase      = "https://www.youtube.com"
	resolveTimeout   = 5 * time.Second
	shutdownDisabled = "Sorry boss, shutdown is disabled. Set LAUNCHER_ALLOW_SHUTDOWN=true to allow it."
)

var (
	videoIDPattern = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)

	// Names outside the app table must look like an application name.
	launchableName = regexp.MustCompile(`^[a-z0-9][a-z0-9 ._+-]*$`)

	powerCommands = map[string]bool{
		"shutdown": true, "reboot": true, "poweroff": true, "halt": true,
		"init": true, "systemctl": true, "logoff": true,
	}
)

// Launcher is safe for concurrent use; the app table may be replaced while
// requests are served.
type Launcher struct {
	mu   sync.RWMutex
	apps map[string]App

	goos          string
	run           Runner
	openURL       func(string) error
	client        *http.Client
	youTube       string
	allowShutdown bool
}

// Option customises a Launcher.
type Option func(*Launcher)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option { return func(l *Launcher) { l.run = r } }

// WithURLOpener replaces the browser opener.
func WithURLOpener(fn func(string) error) Option { return func(l *Launcher) { l.openURL = fn } }

// WithHTTPClient sets the client used to resolve YouTube results.
func WithHTTPClient(c *http.Client) Option { return func(l *Launcher) { l.client = c } }

// WithGOOS selects the built-in app table and shell conventions.
func WithGOOS(goos string) Option { return func(l *Launcher) { l.goos = goos } }

// WithYouTubeBase points YouTube lookups at another host.
func WithYouTubeBase(base string) Option { return func(l *Launcher) { l.youTube = strings.TrimRight(base, "/") } }

// New creates a launcher from cfg. The app table is the built-in table for
// the target OS; call ReloadApps or WatchApps to apply cfg.AppsFile.
func New(cfg config.LauncherConfig, opts ...Option) *Launcher {
	l := &Launcher{
		goos:          runtime.GOOS,
		run:           ExecRunner{},
		openURL:       browser.OpenURL,
		client:        http.DefaultClient,
		youTube:       youTubeBase,
		allowShutdown: cfg.AllowShutdown,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.apps = DefaultApps(l.goos)
	return l
}

// SetApps merges overrides on top of the built-in table.
func (l *Launcher) SetApps(overrides map[string]App) {
	apps := DefaultApps(l.goos)
	for name, app := range overrides {
		apps[name] = app
	}

	l.mu.Lock()
	l.apps = apps
	l.mu.Unlock()
}

// ReloadApps reads path and merges it on top of the built-in table. On error
// the current table is kept.
func (l *Launcher) ReloadApps(path string) error {
	overrides, err := LoadApps(path)
	if err != nil {
		return err
	}
	l.SetApps(overrides)
	slog.Info("launcher app table loaded", "path", path, "overrides", len(overrides))
	return nil
}

func (l *Launcher) lookup(name string) (App, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	app, ok := l.apps[name]
	return app, ok
}

// Open starts a known application. Other names are handed to the desktop's
// application lookup, never run as commands.
func (l *Launcher) Open(ctx context.Context, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "What would you like me to open, boss?"
	}

	if app, ok := l.lookup(name); ok {
		if err := l.run.Start(ctx, app.Command, app.Args...); err != nil {
			slog.Warn("open app failed", "app", name, "err", err)
			return fmt.Sprintf("Sorry boss, I couldn't open %s", name)
		}
		return fmt.Sprintf("Opening %s for you, boss!", name)
	}

	if !launchableName.MatchString(name) {
		slog.Warn("refused to launch unsafe app name", "app", name)
		return fmt.Sprintf("Sorry boss, I can't open %q.", name)
	}
	for _, word := range strings.Fields(name) {
		if powerCommands[word] {
			if !l.allowShutdown {
				return shutdownDisabled
			}
			return "Ask me to shut down the laptop instead, boss."
		}
	}

	fallback := l.fallback(name)
	if err := l.run.Start(ctx, fallback.Command, fallback.Args...); err != nil {
		slog.Debug("launch fallback failed", "app", name, "err", err)
		return fmt.Sprintf("Sorry boss, I couldn't find %s", name)
	}
	return fmt.Sprintf("Attempting to launch %s, boss!", name)
}

func (l *Launcher) fallback(name string) App {
	switch l.goos {
	case "windows":
		return winStart(name)
	case "darwin":
		return macOpen(name)
	default:
		return bin("gtk-launch", name)
	}
}

// Search opens a Google search for query.
func (l *Launcher) Search(_ context.Context, query string) string {
	if err := l.openURL(searchURL + url.QueryEscape(query)); err != nil {
		slog.Warn("open search failed", "query", query, "err", err)
		return "Sorry boss, I couldn't open the browser."
	}
	return fmt.Sprintf("Searching Google for '%s' for you, boss!", query)
}

// PlayYouTube opens the first video for query, or the search results when
// no video can be resolved.
func (l *Launcher) PlayYouTube(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "What would you like me to play on YouTube, boss?"
	}

	resultsURL := l.youTube + "/results?search_query=" + url.QueryEscape(query)

	id, err := l.firstVideo(ctx, resultsURL)
	if err == nil {
		if err = l.openURL(l.youTube + "/watch?v=" + id); err == nil {
			return fmt.Sprintf("🎵 Playing '%s' on YouTube for you, boss!", query)
		}
	}
	slog.Debug("youtube autoplay unavailable", "query", query, "err", err)

	if err := l.openURL(resultsURL); err != nil {
		slog.Warn("open youtube results failed", "query", query, "err", err)
	}
	return fmt.Sprintf("🎵 I couldn't auto-play, so I opened the search results for '%s'.", query)
}

func (l *Launcher) firstVideo(ctx context.Context, resultsURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultsURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("youtube results: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	m := videoIDPattern.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("youtube results: no video found")
	}
	return string(m[1]), nil
}

// OpenClock opens the system clock or alarms app.
func (l *Launcher) OpenClock(ctx context.Context) error {
	app, ok := l.lookup("clock")
	if !ok {
		return fmt.Errorf("no clock app for %s", l.goos)
	}
	return l.run.Start(ctx, app.Command, app.Args...)
}

// Shutdown powers the machine off after five seconds. It is refused unless
// enabled in config.
func (l *Launcher) Shutdown(ctx context.Context) string {
	if !l.allowShutdown {
		return shutdownDisabled
	}

	var err error
	if l.goos == "windows" {
		err = l.run.Start(ctx, "shutdown", "/s", "/t", "5")
	} else {
		err = l.run.Start(ctx, "sh", "-c", "sleep 5 && shutdown -h now")
	}
	if err != nil {
		slog.Error("shutdown failed", "err", err)
		return "Sorry boss, I couldn't shut down the laptop."
	}
	return "Shutting down the laptop in 5 seconds, boss. Goodbye!"
}
